// Package report serializes the finished VWAP table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/feedlab/itchvwap/internal/vwap"
)

// WriteCSV writes one row per security: ticker, then the running VWAP for
// each hour label 10:00 through 16:00, 4 decimal places.
func WriteCSV(w io.Writer, rows []vwap.Row) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, vwap.Hours+1)
	header = append(header, "Stock Ticker")
	for _, label := range vwap.Labels() {
		header = append(header, label+" Running VWAP")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, vwap.Hours+1)
	for _, row := range rows {
		record[0] = row.Ticker
		for i, v := range row.VWAP {
			record[i+1] = strconv.FormatFloat(v, 'f', 4, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to a file path.
func WriteCSVFile(path string, rows []vwap.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
