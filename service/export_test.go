package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jakeh134/motionflow/model"
)

func TestWriteCSVEmptyListIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Case #,Case Type,Motion Type,Filer,Status,Date Filed\n", buf.String())
}

func TestWriteCSVRows(t *testing.T) {
	motions := []*model.Motion{
		{
			ID: "m1", CaseNumber: "25-EV-1001", CaseType: "Eviction",
			MotionType: "Motion for Continuance", FilerName: "John Doe",
			Status: model.StatusPending, CreatedAt: time.Date(2025, 4, 9, 14, 35, 0, 0, time.UTC),
		},
		{
			ID: "m9", CaseNumber: "25-EV-1009",
			MotionType: "Motion to Dismiss", FilerName: `Properties, LLC "East"`,
			Status: model.StatusFixRequested, CreatedAt: time.Date(2025, 4, 10, 23, 59, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, motions))

	want := "Case #,Case Type,Motion Type,Filer,Status,Date Filed\n" +
		"25-EV-1001,Eviction,Motion for Continuance,John Doe,pending,2025-04-09\n" +
		`25-EV-1009,Eviction,Motion to Dismiss,"Properties, LLC ""East""",fix_requested,2025-04-10` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 4, 9, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "motions-export-2025-04-09.csv", ExportFilename(FormatCSV, now))
	assert.Equal(t, "motions-export-2025-04-09.xlsx", ExportFilename(FormatXLSX, now))
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExportFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, FormatXLSX, DemoMotions()[:2]))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"25-EV-1002", "Eviction", "Motion to Dismiss", "Jane Smith", "needs_manual_review", "2025-04-09"}, rows[2])
}
