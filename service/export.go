package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jakeh134/motionflow/model"
)

// ExportFormat selects the dashboard export encoding.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat defaults an empty value to csv.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the HTTP content type for the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

var exportHeader = []string{"Case #", "Case Type", "Motion Type", "Filer", "Status", "Date Filed"}

const exportSheet = "Motions"

// ExportRow renders one motion as an export row.
func ExportRow(m *model.Motion) []string {
	caseType := m.CaseType
	if caseType == "" {
		caseType = "Eviction"
	}
	return []string{
		m.CaseNumber,
		caseType,
		m.MotionType,
		m.FilerName,
		string(m.Status),
		m.CreatedAt.UTC().Format("2006-01-02"),
	}
}

// ExportFilename is the download name for an export generated at now.
func ExportFilename(f ExportFormat, now time.Time) string {
	return fmt.Sprintf("motions-export-%s.%s", now.Format("2006-01-02"), f)
}

// WriteExport encodes motions in the requested format.
func WriteExport(w io.Writer, f ExportFormat, motions []*model.Motion) error {
	if f == FormatXLSX {
		return WriteXLSX(w, motions)
	}
	return WriteCSV(w, motions)
}

// WriteCSV writes the header and one row per motion. Fields containing commas,
// quotes or newlines are quoted.
func WriteCSV(w io.Writer, motions []*model.Motion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, m := range motions {
		if err := cw.Write(ExportRow(m)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", m.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, motions []*model.Motion) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]string, 0, len(motions)+1)
	rows = append(rows, exportHeader)
	for _, m := range motions {
		rows = append(rows, ExportRow(m))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
