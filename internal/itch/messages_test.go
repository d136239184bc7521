package itch

import "testing"

func TestPrice4RoundTrip(t *testing.T) {
	prices := []float64{0.0, 1.0, 99.99, 125.50, 0.0001}
	for _, p := range prices {
		got := Price4ToFloat(Price4(p))
		diff := got - p
		if diff < -0.00005 || diff > 0.00005 {
			t.Errorf("Price4 round-trip failed for %f: got %f", p, got)
		}
	}
}

func TestPrice4KnownValues(t *testing.T) {
	cases := []struct {
		price float64
		want  uint32
	}{
		{125.50, 1255000},
		{100.25, 1002500},
		{0.01, 100},
		{1.0, 10000},
	}
	for _, c := range cases {
		got := Price4(c.price)
		if got != c.want {
			t.Errorf("Price4(%f) = %d, want %d", c.price, got, c.want)
		}
	}
}

func TestFormatPrice4(t *testing.T) {
	cases := []struct {
		raw  uint32
		want string
	}{
		{1255000, "125.5000"},
		{1002500, "100.2500"},
		{100, "0.0100"},
		{0, "0.0000"},
	}
	for _, c := range cases {
		if got := FormatPrice4(c.raw); got != c.want {
			t.Errorf("FormatPrice4(%d) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	// 09:30:00.000036 in nanoseconds since midnight.
	got := FormatTimestamp(34200000036157)
	if got != "09:30:00.000036" {
		t.Errorf("FormatTimestamp = %q, want 09:30:00.000036", got)
	}
}

func TestPadStock(t *testing.T) {
	b := PadStock("AAPL")
	got := string(b[:])
	want := "AAPL    "
	if got != want {
		t.Errorf("PadStock(AAPL) = %q, want %q", got, want)
	}
}

func TestTrimStock(t *testing.T) {
	if got := TrimStock([]byte("QBIT    ")); got != "QBIT" {
		t.Errorf("TrimStock = %q, want QBIT", got)
	}
}

func TestMsgTypeConstants(t *testing.T) {
	cases := []struct {
		name string
		got  MsgType
		want byte
	}{
		{"SystemEvent", MsgSystemEvent, 'S'},
		{"StockDirectory", MsgStockDirectory, 'R'},
		{"AddOrder", MsgAddOrder, 'A'},
		{"AddOrderMPID", MsgAddOrderMPID, 'F'},
		{"OrderExecuted", MsgOrderExecuted, 'E'},
		{"OrderExecutedPrice", MsgOrderExecutedPrice, 'C'},
		{"OrderReplace", MsgOrderReplace, 'U'},
		{"Trade", MsgTrade, 'P'},
	}
	for _, c := range cases {
		if byte(c.got) != c.want {
			t.Errorf("%s: got %c, want %c", c.name, c.got, c.want)
		}
	}
}
