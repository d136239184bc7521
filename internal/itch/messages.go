package itch

import (
	"fmt"
	"strings"
)

// Message type codes matching ITCH 5.0.
type MsgType byte

const (
	MsgSystemEvent        MsgType = 'S'
	MsgStockDirectory     MsgType = 'R'
	MsgAddOrder           MsgType = 'A'
	MsgAddOrderMPID       MsgType = 'F'
	MsgOrderExecuted      MsgType = 'E'
	MsgOrderExecutedPrice MsgType = 'C'
	MsgOrderReplace       MsgType = 'U'
	MsgTrade              MsgType = 'P'
)

// System event codes.
const (
	EventStartOfMessages byte = 'O'
	EventStartOfSystem   byte = 'S'
	EventStartOfMarket   byte = 'Q'
	EventEndOfMarket     byte = 'M'
	EventEndOfSystem     byte = 'E'
	EventEndOfMessages   byte = 'C'
)

// payloadLen maps every ITCH 5.0 tag to its payload length, i.e. the number
// of bytes following the 1-byte tag. Message framing depends entirely on
// these being exact: one wrong length desynchronizes the rest of the stream.
var payloadLen = map[MsgType]int{
	MsgSystemEvent:        11,
	MsgStockDirectory:     38,
	'H':                   24, // Stock Trading Action
	'Y':                   19, // Reg SHO Restriction
	'L':                   25, // Market Participant Position
	'V':                   34, // MWCB Decline Level
	'W':                   11, // MWCB Status
	'K':                   27, // IPO Quoting Period Update
	'J':                   34, // LULD Auction Collar
	'h':                   20, // Operational Halt
	MsgAddOrder:           35,
	MsgAddOrderMPID:       39,
	MsgOrderExecuted:      30,
	MsgOrderExecutedPrice: 35,
	'X':                   22, // Order Cancel
	'D':                   18, // Order Delete
	MsgOrderReplace:       34,
	MsgTrade:              43,
	'Q':                   39, // Cross Trade
	'B':                   18, // Broken Trade
	'I':                   49, // NOII
	'N':                   19, // RPII
}

// PayloadLen returns the payload length for a tag and whether the tag is known.
func PayloadLen(t MsgType) (int, bool) {
	n, ok := payloadLen[t]
	return n, ok
}

// Message is the universal decoded message struct. Not all fields are set for
// every message type; length-skipped types carry only Type.
type Message struct {
	Type        MsgType
	StockLocate uint16
	TrackingNum uint16
	Timestamp   uint64 // nanoseconds since midnight
	EventCode   byte   // system events
	Stock       string // 8-char ticker, padding stripped
	OrderRef    uint64
	NewOrderRef uint64 // replace messages
	Side        byte   // 'B' or 'S'
	Shares      uint32
	PriceRaw    uint32 // fixed-point, 4 implied decimals
	MatchNumber uint64
	Printable   byte // 'Y' counts toward volume
	MPID        string
}

// Price returns the message price as a float64. Aggregation stays on
// PriceRaw; this is for display boundaries only.
func (m *Message) Price() float64 {
	return Price4ToFloat(m.PriceRaw)
}

// Price4 converts a float64 price to ITCH 4-decimal fixed-point (uint32).
// e.g., 125.50 -> 1255000
func Price4(price float64) uint32 {
	return uint32(price*10000 + 0.5)
}

// Price4ToFloat converts ITCH fixed-point back to float64.
func Price4ToFloat(p uint32) float64 {
	return float64(p) / 10000
}

// FormatPrice4 renders a raw fixed-point price with 4 decimals.
func FormatPrice4(raw uint32) string {
	return fmt.Sprintf("%d.%04d", raw/10000, raw%10000)
}

// FormatTimestamp renders nanoseconds-since-midnight as HH:MM:SS.uuuuuu.
func FormatTimestamp(nanos uint64) string {
	secs := nanos / 1e9
	h := secs / 3600
	m := secs / 60 % 60
	s := secs % 60
	us := nanos / 1000 % 1000000
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, us)
}

// PadStock right-pads a ticker to 8 bytes with spaces.
func PadStock(ticker string) [8]byte {
	var b [8]byte
	copy(b[:], ticker)
	for i := len(ticker); i < 8; i++ {
		b[i] = ' '
	}
	return b
}

// TrimStock strips the trailing space padding from a wire ticker field.
func TrimStock(b []byte) string {
	return strings.TrimRight(string(b), " ")
}
