package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"triage-bridge/internal/models"
)

// ReportHeader 评估明细表头
var ReportHeader = []string{
	"Metric",
	"Trend",
	"Critical Alert",
	"Slope",
	"Latest Value",
}

// GenerateSessionReport 生成单次会话的分诊报告 Excel 文件
// 报告包含患者信息块、逐信号评估明细和标记原因列表
func GenerateSessionReport(session *models.PatientSession, result *models.TriageResult) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if result == nil {
		return nil, fmt.Errorf("result is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Triage Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 患者信息块
	infoRows := [][2]string{
		{"Patient", session.Patient.Name},
		{"Age", session.Patient.Age},
		{"Main Symptom", session.MainSymptom},
		{"Status", result.OverallStatus},
		{"Decision", string(result.Decision)},
		{"Specialist", result.Specialist},
		{"Photo", photoLabel(session)},
	}
	for i, pair := range infoRows {
		row := i + 1
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), pair[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), pair[1])
	}

	// 评估明细表头
	tableStart := len(infoRows) + 2
	for col, title := range ReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, tableStart)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		f.SetCellValue(sheetName, cell, title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 逐信号明细
	for i, sr := range result.Signals {
		row := tableStart + 1 + i
		critical := "No"
		if sr.Critical {
			critical = "YES"
		}
		latest := ""
		if sr.Latest != nil {
			latest = fmt.Sprintf("%g", *sr.Latest)
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), sr.Signal.DisplayName())
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), sr.Trend)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), critical)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), fmt.Sprintf("%.2f", sr.Slope))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), latest)
	}

	// 标记原因
	reasonsStart := tableStart + len(result.Signals) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", reasonsStart), "Reasons")
	f.SetCellStyle(sheetName,
		fmt.Sprintf("A%d", reasonsStart),
		fmt.Sprintf("A%d", reasonsStart),
		headerStyle,
	)
	if len(result.Reasons) == 0 {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", reasonsStart+1),
			"No critical deterioration detected at this time.")
	}
	for i, reason := range result.Reasons {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", reasonsStart+1+i), reason)
	}

	// 列宽：原因列较长
	f.SetColWidth(sheetName, "A", "A", 40)
	f.SetColWidth(sheetName, "B", "E", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportFilename 报告文件名（患者名转为下划线形式）
func ReportFilename(session *models.PatientSession) string {
	name := strings.ToLower(strings.TrimSpace(session.Patient.Name))
	if name == "" {
		name = "anonymous"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("triage_report_%s_%s.xlsx", name, session.SessionID)
}

// photoLabel 影像列标记
func photoLabel(session *models.PatientSession) string {
	if session.HasPhoto() {
		return "AVAILABLE"
	}
	return "NONE"
}
