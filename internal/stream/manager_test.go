package stream

import (
	"encoding/json"
	"testing"
)

func TestClientSubscription(t *testing.T) {
	c := NewClient(nil, 10)

	if c.IsSubscribed("NEXO") {
		t.Fatal("fresh client should not be subscribed")
	}

	c.Subscribe([]string{"NEXO", "QBIT"})
	if !c.IsSubscribed("NEXO") || !c.IsSubscribed("QBIT") {
		t.Fatal("subscribe did not take")
	}
	if c.IsSubscribed("FLUX") {
		t.Fatal("not subscribed to FLUX")
	}

	c.Unsubscribe([]string{"QBIT"})
	if c.IsSubscribed("QBIT") {
		t.Fatal("unsubscribe did not take")
	}
}

func TestClientSubscribeAll(t *testing.T) {
	c := NewClient(nil, 10)
	c.SubscribeAll()
	if !c.IsSubscribed("ANYTHING") {
		t.Fatal("all-subscription should match every ticker")
	}
}

func TestClientSendBufferFull(t *testing.T) {
	c := NewClient(nil, 1)
	if !c.Send([]byte("a")) {
		t.Fatal("first send should fit the buffer")
	}
	if c.Send([]byte("b")) {
		t.Fatal("second send should be dropped")
	}
	if c.Dropped != 1 {
		t.Fatalf("dropped = %d, want 1", c.Dropped)
	}
}

func TestTradeMsgJSON(t *testing.T) {
	msg := TradeMsg{Ticker: "NEXO", StockLocate: 1, Price: "125.5000", Shares: 100, Timestamp: 34200000000000}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["ticker"] != "NEXO" || got["price"] != "125.5000" {
		t.Fatalf("payload = %s", data)
	}
}
