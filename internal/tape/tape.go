// Package tape reconstructs executed trades from the decoded message stream.
// It owns the stock directory, the order-reference price table, and the
// session window, and emits one Trade per qualifying execution.
package tape

import (
	"errors"
	"fmt"

	"github.com/feedlab/itchvwap/internal/itch"
)

// Trade is a realized execution that counts toward public volume.
type Trade struct {
	StockLocate uint16
	PriceRaw    uint32 // fixed-point, 4 implied decimals
	Shares      uint32
	Timestamp   uint64 // nanoseconds since midnight
}

// Value returns the trade's notional in raw fixed-point units
// (priceRaw × shares, still scaled by 10^4).
func (t Trade) Value() uint64 {
	return uint64(t.PriceRaw) * uint64(t.Shares)
}

// Sink receives trades as they are reconstructed.
type Sink interface {
	OnTrade(Trade) error
}

// ErrUnknownOrderRef is returned when a plain execute references an order
// that was never added or replaced. Silently dropping it would corrupt
// volume totals without signal, so it is fatal.
var ErrUnknownOrderRef = errors.New("execute against unknown order reference")

// Tape applies decoded messages in stream order.
//
// Add and Replace messages are processed regardless of session state: the
// reference table must stay complete so that orders added before the open
// can execute after it. The started gate only controls trade emission.
//
// A Replace leaves the pre-replace reference resident. Reference numbers are
// not reused within a session, so a late execute against the old number
// still resolves to the price it carried when the order rested.
type Tape struct {
	directory map[uint16]string // stock locate -> ticker
	refs      map[uint64]uint32 // order reference -> raw price
	sink      Sink

	started   bool
	openTime  uint64
	closeTime uint64
}

// New creates an empty tape emitting trades to sink.
func New(sink Sink) *Tape {
	return &Tape{
		directory: make(map[uint16]string),
		refs:      make(map[uint64]uint32),
		sink:      sink,
	}
}

// Apply folds one message into the tape state. done is true once the
// end-of-market event has been seen; no further messages should be applied.
func (t *Tape) Apply(m itch.Message) (done bool, err error) {
	switch m.Type {
	case itch.MsgSystemEvent:
		switch m.EventCode {
		case itch.EventStartOfMarket:
			t.openTime = m.Timestamp
			t.started = true
		case itch.EventEndOfMarket:
			t.closeTime = m.Timestamp
			return true, nil
		}

	case itch.MsgStockDirectory:
		t.directory[m.StockLocate] = m.Stock

	case itch.MsgAddOrder, itch.MsgAddOrderMPID:
		t.refs[m.OrderRef] = m.PriceRaw

	case itch.MsgOrderExecuted:
		if !t.started {
			return false, nil
		}
		price, ok := t.refs[m.OrderRef]
		if !ok {
			return false, fmt.Errorf("tape: %w: ref %d", ErrUnknownOrderRef, m.OrderRef)
		}
		return false, t.emit(m, price)

	case itch.MsgOrderExecutedPrice:
		if !t.started || m.Printable != 'Y' {
			// Non-printable executions are cross/hidden liquidity and
			// are excluded from volume.
			return false, nil
		}
		return false, t.emit(m, m.PriceRaw)

	case itch.MsgOrderReplace:
		t.refs[m.NewOrderRef] = m.PriceRaw

	case itch.MsgTrade:
		if !t.started {
			return false, nil
		}
		return false, t.emit(m, m.PriceRaw)
	}

	return false, nil
}

func (t *Tape) emit(m itch.Message, priceRaw uint32) error {
	return t.sink.OnTrade(Trade{
		StockLocate: m.StockLocate,
		PriceRaw:    priceRaw,
		Shares:      m.Shares,
		Timestamp:   m.Timestamp,
	})
}

// Directory returns the stock locate → ticker mapping seen so far.
func (t *Tape) Directory() map[uint16]string {
	return t.directory
}

// Ticker resolves a stock locate code.
func (t *Tape) Ticker(locate uint16) (string, bool) {
	s, ok := t.directory[locate]
	return s, ok
}

// Started reports whether the market-open event has been seen.
func (t *Tape) Started() bool {
	return t.started
}

// OpenTime returns the market-open timestamp (ns since midnight), 0 if unseen.
func (t *Tape) OpenTime() uint64 {
	return t.openTime
}

// CloseTime returns the market-close timestamp (ns since midnight), 0 if unseen.
func (t *Tape) CloseTime() uint64 {
	return t.closeTime
}

// RefCount returns the number of order references tracked. References are
// never pruned; this bounds the table's memory.
func (t *Tape) RefCount() int {
	return len(t.refs)
}
