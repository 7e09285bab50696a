package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewEventMessageCarriesMeta(t *testing.T) {
	msg := NewEventMessage(context.Background(), "booking.confirmed.v1", "bk-1", []byte(`{}`))
	meta := ExtractEventMeta(msg)
	if meta.EventType != "booking.confirmed.v1" {
		t.Fatalf("unexpected event type %q", meta.EventType)
	}
	if meta.EventID == "" || meta.EventID == "bk-1" {
		t.Fatalf("expected generated event id, got %q", meta.EventID)
	}
	if string(msg.Key) != "bk-1" || msg.Topic != "booking.confirmed.v1" {
		t.Fatalf("unexpected key/topic %q/%q", msg.Key, msg.Topic)
	}
}

func TestExtractEventMetaFallsBack(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{Topic: "t", Key: []byte("k")})
	if meta.EventID != "k" || meta.EventType != "t" {
		t.Fatalf("unexpected fallback meta: %+v", meta)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka:9092, ,kafka2:9092")
	if len(got) != 2 || got[0] != "kafka:9092" || got[1] != "kafka2:9092" {
		t.Fatalf("unexpected brokers: %#v", got)
	}
	if _, err := NewWriter(""); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	headers := []kafka.Header{{Key: "traceparent", Value: []byte("stale")}}
	carrier := &headerCarrier{headers: headers}
	carrier.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
	carrier.Set("tracestate", "k=v")

	if len(carrier.headers) != 2 {
		t.Fatalf("expected replace then append, got %d headers", len(carrier.headers))
	}
	if got := carrier.Get("traceparent"); got != "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01" {
		t.Fatalf("traceparent = %q", got)
	}
	if keys := carrier.Keys(); len(keys) != 2 || keys[1] != "tracestate" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestReadyCheckWithoutBrokers(t *testing.T) {
	if err := ReadyCheck(" , ")(context.Background()); err == nil {
		t.Fatal("expected error without brokers")
	}
}
