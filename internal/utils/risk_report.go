package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"astrowatch/internal/models"
)

const reportSheet = "Risk Report"

// BuildRiskReport создает Excel-отчет по объектам окна сближения
func BuildRiskReport(objects []models.NEOObject) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}

	headers := []string{
		"Reference ID", "Name", "Diameter Max (m)", "Miss Distance (LD)",
		"Velocity (km/s)", "Close Approach", "Risk Score", "Category", "Hazardous",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reportSheet, cell, header)
	}

	for rowIdx, obj := range objects {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		f.SetCellValue(reportSheet, fmt.Sprintf("A%d", rowNum), obj.NeoReferenceID)
		f.SetCellValue(reportSheet, fmt.Sprintf("B%d", rowNum), obj.Name)
		f.SetCellValue(reportSheet, fmt.Sprintf("C%d", rowNum), obj.DiameterMaxM)
		f.SetCellValue(reportSheet, fmt.Sprintf("D%d", rowNum), obj.MissDistanceLunar)
		f.SetCellValue(reportSheet, fmt.Sprintf("E%d", rowNum), obj.VelocityKmS)
		f.SetCellValue(reportSheet, fmt.Sprintf("F%d", rowNum),
			obj.CloseApproachAt.Format("2006-01-02 15:04"))
		f.SetCellValue(reportSheet, fmt.Sprintf("G%d", rowNum), obj.RiskScore)
		f.SetCellValue(reportSheet, fmt.Sprintf("H%d", rowNum), obj.RiskCategory)
		f.SetCellValue(reportSheet, fmt.Sprintf("I%d", rowNum), obj.IsHazardous)
	}

	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(reportSheet, colName, colName, 20)
	}

	// Подсветка высокого риска (score >= 76)
	highRiskRule := []excelize.ConditionalFormatOptions{
		{
			Type:     "cell",
			Criteria: ">=",
			Value:    "76",
			Format:   fillStyle(f, "#FFCCCC"),
		},
	}
	if err := f.SetConditionalFormat(reportSheet, "G2:G1000", highRiskRule); err != nil {
		return nil, err
	}

	// Минимальный риск (score <= 25)
	minimalRule := []excelize.ConditionalFormatOptions{
		{
			Type:     "cell",
			Criteria: "<=",
			Value:    "25",
			Format:   fillStyle(f, "#CCE5FF"),
		},
	}
	if err := f.SetConditionalFormat(reportSheet, "G2:G1000", minimalRule); err != nil {
		return nil, err
	}

	createSummarySheet(f, objects)
	f.SetActiveSheet(index)

	return f.WriteToBuffer()
}

func createSummarySheet(f *excelize.File, objects []models.NEOObject) {
	f.NewSheet("Summary")

	hazardous := 0
	highRisk := 0
	for _, obj := range objects {
		if obj.IsHazardous {
			hazardous++
		}
		if obj.RiskCategory == "high" {
			highRisk++
		}
	}

	rows := [][2]interface{}{
		{"Report Generated", time.Now().UTC().Format("2006-01-02 15:04:05")},
		{"Objects In Window", len(objects)},
		{"Source-Flagged Hazardous", hazardous},
		{"High Risk Category", highRisk},
	}

	for i, row := range rows {
		f.SetCellValue("Summary", fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue("Summary", fmt.Sprintf("B%d", i+1), row[1])
	}
}

func fillStyle(f *excelize.File, color string) *int {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil
	}
	return &style
}
