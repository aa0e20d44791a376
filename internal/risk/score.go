package risk

import "math"

const (
	CategoryMinimal  = "minimal"
	CategoryLow      = "low"
	CategoryModerate = "moderate"
	CategoryHigh     = "high"
)

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Веса модели, сумма = 1.0
const (
	hazardWeight   = 0.40
	diameterWeight = 0.25
	distanceWeight = 0.25
	velocityWeight = 0.10
)

// Factors - канонический нормализованный вход скоринга.
// Отсутствующие поля источника приводятся к нулю до построения Factors.
type Factors struct {
	DiameterMaxM      float64 `json:"diameterMaxM"`
	MissDistanceLunar float64 `json:"missDistanceLunar"`
	VelocityKmS       float64 `json:"velocityKmS"`
	Hazardous         bool    `json:"hazardous"`
}

// Breakdown - взвешенный вклад каждой компоненты в итоговый балл.
type Breakdown struct {
	Hazard   float64 `json:"hazard"`
	Diameter float64 `json:"diameter"`
	Distance float64 `json:"distance"`
	Velocity float64 `json:"velocity"`
}

type Assessment struct {
	Score     int       `json:"score"`
	Category  string    `json:"category"`
	Breakdown Breakdown `json:"breakdown"`
	Factors   Factors   `json:"factors"`
}

// Assess - чистая детерминированная функция риска.
// Итог всегда в диапазоне [1,100]: ноль не валиден даже для полностью
// неизвестного объекта.
func Assess(f Factors) Assessment {
	hazard := 0.0
	if f.Hazardous {
		hazard = 100
	}

	diameter := diameterScore(f.DiameterMaxM)
	distance := distanceScore(f.MissDistanceLunar)
	velocity := velocityScore(f.VelocityKmS)

	weighted := hazardWeight*hazard +
		diameterWeight*diameter +
		distanceWeight*distance +
		velocityWeight*velocity

	score := int(math.Round(weighted))
	if score < 1 {
		score = 1
	}
	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:    score,
		Category: CategoryFor(score),
		Breakdown: Breakdown{
			Hazard:   hazardWeight * hazard,
			Diameter: diameterWeight * diameter,
			Distance: distanceWeight * distance,
			Velocity: velocityWeight * velocity,
		},
		Factors: f,
	}
}

// Логарифмическая шкала: 1000м и больше дают максимум.
func diameterScore(meters float64) float64 {
	if meters <= 0 {
		return 0
	}
	return clamp(100 * math.Log10(meters) / math.Log10(1000))
}

// Неизвестная дистанция считается худшим случаем.
// Линейная интерполяция на отрезке [1, 50] лунных дистанций.
func distanceScore(lunar float64) float64 {
	if lunar <= 0 {
		return 100
	}
	if lunar <= 1 {
		return 100
	}
	if lunar >= 50 {
		return 0
	}
	return clamp(100 * (50 - lunar) / (50 - 1))
}

// 30 км/с и выше - максимум.
func velocityScore(kmps float64) float64 {
	return clamp(100 * kmps / 30)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func CategoryFor(score int) string {
	switch {
	case score >= 76:
		return CategoryHigh
	case score >= 51:
		return CategoryModerate
	case score >= 26:
		return CategoryLow
	default:
		return CategoryMinimal
	}
}

func SeverityFor(score int) string {
	switch {
	case score >= 75:
		return SeverityDanger
	case score >= 50:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
