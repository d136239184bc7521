package itch

import (
	"encoding/binary"
)

// Binary ITCH 5.0 encoder for the message kinds the decoder understands.
// Messages are emitted in capture-file framing: tag byte + payload, no
// length prefix. Used to build synthetic feeds and test fixtures.

// Encode encodes a Message into ITCH 5.0 binary format, tag byte included.
// Returns nil for message types the encoder does not support.
func Encode(m *Message) []byte {
	switch m.Type {
	case MsgSystemEvent:
		return encodeSystemEvent(m)
	case MsgStockDirectory:
		return encodeStockDirectory(m)
	case MsgAddOrder:
		return encodeAddOrder(m)
	case MsgAddOrderMPID:
		return encodeAddOrderMPID(m)
	case MsgOrderExecuted:
		return encodeOrderExecuted(m)
	case MsgOrderExecutedPrice:
		return encodeOrderExecutedPrice(m)
	case MsgOrderReplace:
		return encodeOrderReplace(m)
	case MsgTrade:
		return encodeTrade(m)
	default:
		return nil
	}
}

// putTimestamp writes a 6-byte big-endian nanosecond timestamp.
func putTimestamp(buf []byte, nanos uint64) {
	buf[0] = byte(nanos >> 40)
	buf[1] = byte(nanos >> 32)
	buf[2] = byte(nanos >> 24)
	buf[3] = byte(nanos >> 16)
	buf[4] = byte(nanos >> 8)
	buf[5] = byte(nanos)
}

// putHead writes Type(1) + StockLocate(2) + TrackingNum(2) + Timestamp(6).
func putHead(buf []byte, m *Message) {
	buf[0] = byte(m.Type)
	binary.BigEndian.PutUint16(buf[1:3], m.StockLocate)
	binary.BigEndian.PutUint16(buf[3:5], m.TrackingNum)
	putTimestamp(buf[5:11], m.Timestamp)
}

// System Event: head(11) + EventCode(1) = 12
func encodeSystemEvent(m *Message) []byte {
	buf := make([]byte, 12)
	putHead(buf, m)
	buf[11] = m.EventCode
	return buf
}

// Stock Directory: head(11) + Stock(8) + 20 attribute bytes = 39.
// The listing attributes are not consumed downstream; they are written as
// plausible defaults so the frame length stays exact.
func encodeStockDirectory(m *Message) []byte {
	buf := make([]byte, 39)
	putHead(buf, m)
	stock := PadStock(m.Stock)
	copy(buf[11:19], stock[:])
	buf[19] = 'Q'                                  // market category
	buf[20] = 'N'                                  // financial status
	binary.BigEndian.PutUint32(buf[21:25], 100)    // round lot size
	buf[25] = 'N'                                  // round lots only
	buf[26] = 'C'                                  // issue classification
	copy(buf[27:29], "Z ")                         // issue sub-type
	buf[29] = 'P'                                  // authenticity
	buf[30] = 'N'                                  // short sale threshold
	buf[31] = ' '                                  // IPO flag
	buf[32] = '1'                                  // LULD tier
	buf[33] = 'N'                                  // ETP flag
	binary.BigEndian.PutUint32(buf[34:38], 0)      // ETP leverage factor
	buf[38] = 'N'                                  // inverse indicator
	return buf
}

// Add Order - No MPID: head(11) + OrderRef(8) + Side(1) + Shares(4) +
// Stock(8) + Price(4) = 36
func encodeAddOrder(m *Message) []byte {
	buf := make([]byte, 36)
	putHead(buf, m)
	binary.BigEndian.PutUint64(buf[11:19], m.OrderRef)
	buf[19] = m.Side
	binary.BigEndian.PutUint32(buf[20:24], m.Shares)
	stock := PadStock(m.Stock)
	copy(buf[24:32], stock[:])
	binary.BigEndian.PutUint32(buf[32:36], m.PriceRaw)
	return buf
}

// Add Order with MPID: Add Order + MPID(4) = 40
func encodeAddOrderMPID(m *Message) []byte {
	buf := make([]byte, 40)
	copy(buf, encodeAddOrder(m))
	buf[0] = byte(MsgAddOrderMPID)
	mpid := m.MPID
	for len(mpid) < 4 {
		mpid += " "
	}
	copy(buf[36:40], mpid)
	return buf
}

// Order Executed: head(11) + OrderRef(8) + Shares(4) + MatchNumber(8) = 31
func encodeOrderExecuted(m *Message) []byte {
	buf := make([]byte, 31)
	putHead(buf, m)
	binary.BigEndian.PutUint64(buf[11:19], m.OrderRef)
	binary.BigEndian.PutUint32(buf[19:23], m.Shares)
	binary.BigEndian.PutUint64(buf[23:31], m.MatchNumber)
	return buf
}

// Order Executed With Price: head(11) + OrderRef(8) + Shares(4) +
// MatchNumber(8) + Printable(1) + Price(4) = 36
func encodeOrderExecutedPrice(m *Message) []byte {
	buf := make([]byte, 36)
	putHead(buf, m)
	binary.BigEndian.PutUint64(buf[11:19], m.OrderRef)
	binary.BigEndian.PutUint32(buf[19:23], m.Shares)
	binary.BigEndian.PutUint64(buf[23:31], m.MatchNumber)
	buf[31] = m.Printable
	binary.BigEndian.PutUint32(buf[32:36], m.PriceRaw)
	return buf
}

// Order Replace: head(11) + OrigOrderRef(8) + NewOrderRef(8) + Shares(4) +
// Price(4) = 35
func encodeOrderReplace(m *Message) []byte {
	buf := make([]byte, 35)
	putHead(buf, m)
	binary.BigEndian.PutUint64(buf[11:19], m.OrderRef)
	binary.BigEndian.PutUint64(buf[19:27], m.NewOrderRef)
	binary.BigEndian.PutUint32(buf[27:31], m.Shares)
	binary.BigEndian.PutUint32(buf[31:35], m.PriceRaw)
	return buf
}

// Trade (Non-Cross): head(11) + OrderRef(8) + Side(1) + Shares(4) +
// Stock(8) + Price(4) + MatchNumber(8) = 44
func encodeTrade(m *Message) []byte {
	buf := make([]byte, 44)
	putHead(buf, m)
	binary.BigEndian.PutUint64(buf[11:19], m.OrderRef)
	buf[19] = m.Side
	binary.BigEndian.PutUint32(buf[20:24], m.Shares)
	stock := PadStock(m.Stock)
	copy(buf[24:32], stock[:])
	binary.BigEndian.PutUint32(buf[32:36], m.PriceRaw)
	binary.BigEndian.PutUint64(buf[36:44], m.MatchNumber)
	return buf
}
