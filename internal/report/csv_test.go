package report

import (
	"strings"
	"testing"

	"github.com/feedlab/itchvwap/internal/vwap"
)

func TestWriteCSV(t *testing.T) {
	rows := []vwap.Row{
		{Ticker: "NEXO", VWAP: [vwap.Hours]float64{0, 0, 0, 0, 0, 0, 50}},
		{Ticker: "QBIT"},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}

	wantHeader := "Stock Ticker,10:00 Running VWAP,11:00 Running VWAP,12:00 Running VWAP," +
		"13:00 Running VWAP,14:00 Running VWAP,15:00 Running VWAP,16:00 Running VWAP"
	if lines[0] != wantHeader {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "NEXO,0.0000,0.0000,0.0000,0.0000,0.0000,0.0000,50.0000" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "QBIT,0.0000,0.0000,0.0000,0.0000,0.0000,0.0000,0.0000" {
		t.Errorf("row 2 = %q", lines[2])
	}
}
