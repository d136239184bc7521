package itch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Binary ITCH 5.0 decoder.
// A capture file is a bare concatenation of messages: 1-byte ASCII tag
// followed by a tag-specific fixed-length big-endian payload. There is no
// length prefix and no resynchronization; each message is framed solely by
// the payload length table.

// ErrUnknownType marks a tag byte that is not in the layout table. The
// reader treats it as the end of the usable stream.
var ErrUnknownType = errors.New("unknown message type")

// readTimestamp reads a 6-byte big-endian nanoseconds-since-midnight field.
func readTimestamp(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// Decode interprets a message payload (the bytes after the tag) for the
// message kinds the pipeline consumes. Tags that are only length-significant
// return a Message carrying just the type.
//
// Payload offsets (tag already stripped):
//
//	common head: StockLocate(2) + TrackingNum(2) + Timestamp(6)
func Decode(t MsgType, body []byte) Message {
	m := Message{Type: t}

	switch t {
	case MsgSystemEvent:
		// head(10) + EventCode(1)
		m.decodeHead(body)
		m.EventCode = body[10]

	case MsgStockDirectory:
		// head(10) + Stock(8) + 20 bytes of listing attributes (unused)
		m.decodeHead(body)
		m.Stock = TrimStock(body[10:18])

	case MsgAddOrder:
		// head(10) + OrderRef(8) + Side(1) + Shares(4) + Stock(8) + Price(4)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.Side = body[18]
		m.Shares = binary.BigEndian.Uint32(body[19:23])
		m.Stock = TrimStock(body[23:31])
		m.PriceRaw = binary.BigEndian.Uint32(body[31:35])

	case MsgAddOrderMPID:
		// Add Order layout + MPID(4)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.Side = body[18]
		m.Shares = binary.BigEndian.Uint32(body[19:23])
		m.Stock = TrimStock(body[23:31])
		m.PriceRaw = binary.BigEndian.Uint32(body[31:35])
		m.MPID = TrimStock(body[35:39])

	case MsgOrderExecuted:
		// head(10) + OrderRef(8) + Shares(4) + MatchNumber(8)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.Shares = binary.BigEndian.Uint32(body[18:22])
		m.MatchNumber = binary.BigEndian.Uint64(body[22:30])

	case MsgOrderExecutedPrice:
		// head(10) + OrderRef(8) + Shares(4) + MatchNumber(8) +
		// Printable(1) + Price(4)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.Shares = binary.BigEndian.Uint32(body[18:22])
		m.MatchNumber = binary.BigEndian.Uint64(body[22:30])
		m.Printable = body[30]
		m.PriceRaw = binary.BigEndian.Uint32(body[31:35])

	case MsgOrderReplace:
		// head(10) + OrigOrderRef(8) + NewOrderRef(8) + Shares(4) + Price(4)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.NewOrderRef = binary.BigEndian.Uint64(body[18:26])
		m.Shares = binary.BigEndian.Uint32(body[26:30])
		m.PriceRaw = binary.BigEndian.Uint32(body[30:34])

	case MsgTrade:
		// head(10) + OrderRef(8) + Side(1) + Shares(4) + Stock(8) +
		// Price(4) + MatchNumber(8)
		m.decodeHead(body)
		m.OrderRef = binary.BigEndian.Uint64(body[10:18])
		m.Side = body[18]
		m.Shares = binary.BigEndian.Uint32(body[19:23])
		m.Stock = TrimStock(body[23:31])
		m.PriceRaw = binary.BigEndian.Uint32(body[31:35])
		m.MatchNumber = binary.BigEndian.Uint64(body[35:43])
	}

	return m
}

func (m *Message) decodeHead(body []byte) {
	m.StockLocate = binary.BigEndian.Uint16(body[0:2])
	m.TrackingNum = binary.BigEndian.Uint16(body[2:4])
	m.Timestamp = readTimestamp(body[4:10])
}

// Reader reads one message at a time from a raw ITCH byte stream and tracks
// the byte offset for diagnostics.
type Reader struct {
	r   io.Reader
	off int64
	buf [64]byte
}

// NewReader wraps r. Callers feeding from a file should pass a buffered
// reader (the gzip reader already buffers).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Next reads and decodes the next message. It returns io.EOF at a clean end
// of stream, and a wrapped ErrUnknownType when the tag byte is not in the
// layout table. A short payload read is fatal: the stream cannot be
// resynchronized.
func (r *Reader) Next() (Message, error) {
	tag := r.buf[:1]
	if _, err := io.ReadFull(r.r, tag); err != nil {
		return Message{}, err
	}
	tagOff := r.off
	r.off++

	t := MsgType(tag[0])
	n, ok := PayloadLen(t)
	if !ok {
		return Message{}, fmt.Errorf("itch: %w %q at offset %d", ErrUnknownType, tag[0], tagOff)
	}

	body := r.buf[:n]
	if _, err := io.ReadFull(r.r, body); err != nil {
		return Message{}, fmt.Errorf("itch: truncated %c message at offset %d: %w", t, tagOff, err)
	}
	r.off += int64(n)

	return Decode(t, body), nil
}
