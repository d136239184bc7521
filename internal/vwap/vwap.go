// Package vwap buckets the trade tape into the seven trading hours and
// projects a running volume-weighted average price per security.
package vwap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/feedlab/itchvwap/internal/tape"
)

// Hours is the number of trading-hour buckets per security, covering the
// clock hours 10:00 through 16:00 anchored to the market close.
const Hours = 7

const nsPerHour = uint64(60 * 60 * 1e9)

var hourLabels = [Hours]string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}

// Labels returns the hour labels in chronological order.
func Labels() [Hours]string {
	return hourLabels
}

// Label returns the label for a bucket index (0 = "10:00", 6 = "16:00").
func Label(i int) string {
	return hourLabels[i]
}

// HourIndex assigns a timestamp to a bucket by its distance from the close.
// A trade exactly at the close lands in "16:00"; one exactly six hours
// before the close lands in "10:00"; anything earlier clamps into "10:00".
func HourIndex(ts, closeTime uint64) int {
	if ts >= closeTime {
		return Hours - 1
	}
	h := (closeTime - ts) / nsPerHour
	if h > Hours-1 {
		h = Hours - 1
	}
	return Hours - 1 - int(h)
}

// Bucket accumulates one security-hour's executed volume. ValueRaw is
// Σ priceRaw×shares, still scaled by 10^4; sums stay integral so a full
// session accumulates without drift.
type Bucket struct {
	ValueRaw uint64
	Shares   uint64
}

// ErrUnknownStock is returned when a trade references a locate code absent
// from the stock directory. Creating a placeholder would mask upstream
// decode drift, so the run fails instead.
var ErrUnknownStock = errors.New("trade for stock absent from directory")

// Aggregator collects the trade tape. The hour grid is anchored to the
// actual close timestamp, which is only known once the end-of-market event
// arrives, so trades are held until Fold.
type Aggregator struct {
	trades []tape.Trade
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// OnTrade implements tape.Sink.
func (a *Aggregator) OnTrade(t tape.Trade) error {
	a.trades = append(a.trades, t)
	return nil
}

// TradeCount returns the number of collected trades.
func (a *Aggregator) TradeCount() int {
	return len(a.trades)
}

// Trades returns the collected tape in stream order. The slice is owned by
// the aggregator; callers must not mutate it.
func (a *Aggregator) Trades() []tape.Trade {
	return a.trades
}

// Fold buckets every collected trade against the close timestamp. Every
// directory security gets seven zero buckets up front, so securities with
// no volume still report a defined table.
func (a *Aggregator) Fold(directory map[uint16]string, closeTime uint64) (*Table, error) {
	buckets := make(map[uint16]*[Hours]Bucket, len(directory))
	for locate := range directory {
		buckets[locate] = &[Hours]Bucket{}
	}

	for _, t := range a.trades {
		b, ok := buckets[t.StockLocate]
		if !ok {
			return nil, fmt.Errorf("vwap: %w: locate %d", ErrUnknownStock, t.StockLocate)
		}
		i := HourIndex(t.Timestamp, closeTime)
		b[i].ValueRaw += t.Value()
		b[i].Shares += uint64(t.Shares)
	}

	return &Table{closeTime: closeTime, buckets: buckets}, nil
}

// Table holds the folded hour buckets per security.
type Table struct {
	closeTime uint64
	buckets   map[uint16]*[Hours]Bucket
}

// Buckets returns the hour buckets for one security.
func (t *Table) Buckets(locate uint16) ([Hours]Bucket, bool) {
	b, ok := t.buckets[locate]
	if !ok {
		return [Hours]Bucket{}, false
	}
	return *b, true
}

// Row is one security's projected running VWAP, one value per hour label.
type Row struct {
	StockLocate uint16         `json:"stockLocate" bson:"stock_locate"`
	Ticker      string         `json:"ticker" bson:"ticker"`
	VWAP        [Hours]float64 `json:"vwap" bson:"vwap"`
}

// Rows walks each security's buckets in chronological order, carrying the
// cumulative value and quantity forward, and emits VWAP = V/Q per hour
// (0 while no volume has accrued). Rows are ordered by ticker.
func (t *Table) Rows(directory map[uint16]string) []Row {
	rows := make([]Row, 0, len(t.buckets))
	for locate, buckets := range t.buckets {
		row := Row{StockLocate: locate, Ticker: directory[locate]}
		var value, shares uint64
		for i := 0; i < Hours; i++ {
			value += buckets[i].ValueRaw
			shares += buckets[i].Shares
			if shares != 0 {
				// Convert out of fixed-point only at the output boundary.
				row.VWAP[i] = float64(value) / float64(shares) / 10000
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })
	return rows
}
