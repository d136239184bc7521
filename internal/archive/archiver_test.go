package archive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/feedlab/itchvwap/internal/tape"
)

func TestWriteTape(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, 1)

	directory := map[uint16]string{1: "NEXO"}
	trades := []tape.Trade{
		{StockLocate: 1, PriceRaw: 1255000, Shares: 100, Timestamp: 34200000000000},
		{StockLocate: 1, PriceRaw: 1260000, Shares: 50, Timestamp: 34201000000000},
	}

	if err := a.WriteTape("01302019.NASDAQ_ITCH50.gz", directory, trades); err != nil {
		t.Fatalf("WriteTape: %v", err)
	}

	path := filepath.Join(dir, "tapes", "01302019.NASDAQ_ITCH50.jsonl.gz")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}

	var recs []tradeRecord
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		var rec tradeRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].Ticker != "NEXO" || recs[0].Price != "125.5000" || recs[0].Shares != 100 {
		t.Errorf("record 0 = %+v", recs[0])
	}
}
