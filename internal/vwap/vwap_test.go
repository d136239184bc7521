package vwap

import (
	"errors"
	"testing"

	"github.com/feedlab/itchvwap/internal/tape"
)

const hour = uint64(60 * 60 * 1e9)

// Close a few microseconds past 16:00, as in real captures.
const closeTime = uint64(57600000113132)

func TestHourIndex(t *testing.T) {
	cases := []struct {
		name string
		ts   uint64
		want int
	}{
		{"exactly at close", closeTime, Hours - 1},
		{"within last hour", closeTime - hour/2, Hours - 1},
		{"one hour before close", closeTime - hour, Hours - 2},
		{"exactly six hours before close", closeTime - 6*hour, 0},
		{"pre-open clamps to earliest", closeTime - 8*hour, 0},
		{"after close clamps to latest", closeTime + 1, Hours - 1},
	}
	for _, c := range cases {
		if got := HourIndex(c.ts, closeTime); got != c.want {
			t.Errorf("%s: HourIndex = %d (%s), want %d (%s)",
				c.name, got, Label(got), c.want, Label(c.want))
		}
	}
}

func TestHourIndexIsTotal(t *testing.T) {
	// Every timestamp up to the close maps to exactly one of the 7 labels.
	for ts := uint64(0); ts <= closeTime; ts += closeTime / 997 {
		i := HourIndex(ts, closeTime)
		if i < 0 || i >= Hours {
			t.Fatalf("HourIndex(%d) = %d out of range", ts, i)
		}
	}
}

func TestLabels(t *testing.T) {
	want := [Hours]string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}
	if Labels() != want {
		t.Errorf("Labels() = %v, want %v", Labels(), want)
	}
}

func TestZeroTradeSecurityReportsSevenZeros(t *testing.T) {
	a := New()
	dir := map[uint16]string{1: "NEXO"}
	table, err := a.Fold(dir, closeTime)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	rows := table.Rows(dir)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	for i, v := range rows[0].VWAP {
		if v != 0 {
			t.Errorf("hour %s VWAP = %f, want 0", Label(i), v)
		}
	}
}

func TestFoldBucketsValueAndShares(t *testing.T) {
	a := New()
	// Printable execute-with-price scenario: 100.25 × 10.
	a.OnTrade(tape.Trade{StockLocate: 1, PriceRaw: 1002500, Shares: 10, Timestamp: closeTime - hour/2})

	dir := map[uint16]string{1: "NEXO"}
	table, err := a.Fold(dir, closeTime)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	buckets, ok := table.Buckets(1)
	if !ok {
		t.Fatal("no buckets for locate 1")
	}
	last := buckets[Hours-1]
	// 1002.50 in raw fixed-point units is 10025000.
	if last.ValueRaw != 10025000 || last.Shares != 10 {
		t.Errorf("16:00 bucket = %+v, want {10025000 10}", last)
	}
	for i := 0; i < Hours-1; i++ {
		if buckets[i].Shares != 0 {
			t.Errorf("hour %s unexpectedly has volume", Label(i))
		}
	}
}

func TestRunningFoldCorrectness(t *testing.T) {
	a := New()
	// 100 shares @ 50.00 in the 10:00 bucket, 100 @ 60.00 in the 16:00 bucket.
	a.OnTrade(tape.Trade{StockLocate: 1, PriceRaw: 500000, Shares: 100, Timestamp: closeTime - 7*hour})
	a.OnTrade(tape.Trade{StockLocate: 1, PriceRaw: 600000, Shares: 100, Timestamp: closeTime})

	dir := map[uint16]string{1: "NEXO"}
	table, err := a.Fold(dir, closeTime)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	rows := table.Rows(dir)
	v := rows[0].VWAP

	// Hours 10:00 through 15:00 carry only the first trade.
	for i := 0; i < Hours-1; i++ {
		if v[i] != 50.00 {
			t.Errorf("hour %s VWAP = %f, want 50.00", Label(i), v[i])
		}
	}
	// 16:00 folds both: (5000 + 6000) / 200 = 55.00.
	if v[Hours-1] != 55.00 {
		t.Errorf("16:00 VWAP = %f, want 55.00", v[Hours-1])
	}
}

func TestUnknownLocateFailsFold(t *testing.T) {
	a := New()
	a.OnTrade(tape.Trade{StockLocate: 99, PriceRaw: 1, Shares: 1, Timestamp: closeTime})

	_, err := a.Fold(map[uint16]string{1: "NEXO"}, closeTime)
	if !errors.Is(err, ErrUnknownStock) {
		t.Fatalf("err = %v, want ErrUnknownStock", err)
	}
}

func TestRowsSortedByTicker(t *testing.T) {
	a := New()
	dir := map[uint16]string{3: "ZETA", 1: "ALFA", 2: "MIDL"}
	table, err := a.Fold(dir, closeTime)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	rows := table.Rows(dir)
	want := []string{"ALFA", "MIDL", "ZETA"}
	for i, w := range want {
		if rows[i].Ticker != w {
			t.Errorf("row %d = %s, want %s", i, rows[i].Ticker, w)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	// Session opens at t0, closes at t0+7h. One trade at t0+6h30m priced at
	// 50.00 for 100 shares lands in the last hour before close.
	t0 := uint64(9 * hour)
	close := t0 + 7*hour

	a := New()
	a.OnTrade(tape.Trade{StockLocate: 1, PriceRaw: 500000, Shares: 100, Timestamp: t0 + 6*hour + hour/2})

	dir := map[uint16]string{1: "NEXO", 2: "QBIT"}
	table, err := a.Fold(dir, close)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}

	buckets, _ := table.Buckets(1)
	if buckets[Hours-1].ValueRaw != 50000000 { // 5000.00 in raw units
		t.Errorf("16:00 bucket value = %d, want 50000000", buckets[Hours-1].ValueRaw)
	}

	rows := table.Rows(dir)
	for _, row := range rows {
		for i, v := range row.VWAP {
			switch {
			case row.Ticker == "NEXO" && i == Hours-1:
				if v != 50.00 {
					t.Errorf("NEXO 16:00 VWAP = %f, want 50.00", v)
				}
			default:
				if v != 0 {
					t.Errorf("%s %s VWAP = %f, want 0", row.Ticker, Label(i), v)
				}
			}
		}
	}
}
