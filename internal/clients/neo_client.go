package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"astrowatch/internal/risk"
)

// NeoWs принимает диапазон не длиннее 7 дней
const maxFeedRangeDays = 6

type NEOFeedClient interface {
	FetchFeed(ctx context.Context, start, end time.Time) ([]FeedObject, error)
}

type NEOConfig struct {
	APIKey  string
	FeedURL string
	Timeout time.Duration
}

// FeedObject - нормализованная запись фида: дни диапазона сплющены в одну
// последовательность, взята ближайшая запись сближения.
type FeedObject struct {
	NeoReferenceID    string
	Name              string
	DetailURL         string
	AbsoluteMagnitude float64
	DiameterMinM      float64
	DiameterMaxM      float64
	IsHazardous       bool
	CloseApproachAt   time.Time
	MissDistanceKm    float64
	MissDistanceAU    float64
	MissDistanceLunar float64
	VelocityKmS       float64
	VelocityKmH       float64
	OrbitingBody      string
	Raw               json.RawMessage
}

// Factors возвращает канонический вход для скоринга из формы фида.
func (o FeedObject) Factors() risk.Factors {
	return risk.Factors{
		DiameterMaxM:      o.DiameterMaxM,
		MissDistanceLunar: o.MissDistanceLunar,
		VelocityKmS:       o.VelocityKmS,
		Hazardous:         o.IsHazardous,
	}
}

type neoFeedClient struct {
	apiKey  string
	feedURL string
	client  *http.Client
}

func NewNEOFeedClient(config NEOConfig) NEOFeedClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &neoFeedClient{
		apiKey:  config.APIKey,
		feedURL: config.FeedURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// Формат ответа NeoWs: near_earth_objects это карта дата -> список объектов.
type feedResponse struct {
	ElementCount     int                          `json:"element_count"`
	NearEarthObjects map[string][]json.RawMessage `json:"near_earth_objects"`
}

type feedObject struct {
	NeoReferenceID     string `json:"neo_reference_id"`
	Name               string `json:"name"`
	NasaJplURL         string `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH float64 `json:"absolute_magnitude_h"`
	EstimatedDiameter  struct {
		Meters struct {
			Min float64 `json:"estimated_diameter_min"`
			Max float64 `json:"estimated_diameter_max"`
		} `json:"meters"`
	} `json:"estimated_diameter"`
	IsPotentiallyHazardous bool            `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData      []closeApproach `json:"close_approach_data"`
}

type closeApproach struct {
	CloseApproachDate     string `json:"close_approach_date"`
	CloseApproachDateFull string `json:"close_approach_date_full"`
	EpochDateCloseApproach int64 `json:"epoch_date_close_approach"`
	RelativeVelocity      struct {
		KmPerSec  string `json:"kilometers_per_second"`
		KmPerHour string `json:"kilometers_per_hour"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Astronomical string `json:"astronomical"`
		Lunar        string `json:"lunar"`
		Kilometers   string `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody string `json:"orbiting_body"`
}

func (c *neoFeedClient) FetchFeed(ctx context.Context, start, end time.Time) ([]FeedObject, error) {
	if end.Before(start) {
		end = start
	}
	if end.Sub(start) > maxFeedRangeDays*24*time.Hour {
		end = start.AddDate(0, 0, maxFeedRangeDays)
	}

	params := url.Values{}
	params.Add("start_date", start.UTC().Format("2006-01-02"))
	params.Add("end_date", end.UTC().Format("2006-01-02"))
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}

	reqURL := c.feedURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "AstroWatch/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NEO feed API returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	// Сортируем даты, чтобы порядок последовательности был детерминирован
	dates := make([]string, 0, len(feed.NearEarthObjects))
	for date := range feed.NearEarthObjects {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var objects []FeedObject
	for _, date := range dates {
		for _, raw := range feed.NearEarthObjects[date] {
			var obj feedObject
			if err := json.Unmarshal(raw, &obj); err != nil {
				continue
			}
			if obj.NeoReferenceID == "" {
				continue
			}
			objects = append(objects, normalizeFeedObject(obj, raw))
		}
	}

	return objects, nil
}

func normalizeFeedObject(obj feedObject, raw json.RawMessage) FeedObject {
	out := FeedObject{
		NeoReferenceID:    obj.NeoReferenceID,
		Name:              obj.Name,
		DetailURL:         obj.NasaJplURL,
		AbsoluteMagnitude: obj.AbsoluteMagnitudeH,
		DiameterMinM:      obj.EstimatedDiameter.Meters.Min,
		DiameterMaxM:      obj.EstimatedDiameter.Meters.Max,
		IsHazardous:       obj.IsPotentiallyHazardous,
		Raw:               raw,
	}

	if len(obj.CloseApproachData) > 0 {
		ca := obj.CloseApproachData[0]
		out.CloseApproachAt = parseApproachTime(ca)
		out.MissDistanceKm = parseFloat(ca.MissDistance.Kilometers)
		out.MissDistanceAU = parseFloat(ca.MissDistance.Astronomical)
		out.MissDistanceLunar = parseFloat(ca.MissDistance.Lunar)
		out.VelocityKmS = parseFloat(ca.RelativeVelocity.KmPerSec)
		out.VelocityKmH = parseFloat(ca.RelativeVelocity.KmPerHour)
		out.OrbitingBody = ca.OrbitingBody
	}

	return out
}

func parseApproachTime(ca closeApproach) time.Time {
	if ca.EpochDateCloseApproach > 0 {
		return time.UnixMilli(ca.EpochDateCloseApproach).UTC()
	}
	if t, err := time.Parse("2006-Jan-02 15:04", ca.CloseApproachDateFull); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", ca.CloseApproachDate); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Числовые поля NeoWs приходят строками; мусор приводится к нулю.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
