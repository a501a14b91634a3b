package amqp

import (
	"testing"
	"time"
)

func TestSyncMessageRoundTrip(t *testing.T) {
	msg := NewTransactionSyncMessage(42, 3)
	if msg.Kind != KindSync {
		t.Fatalf("expected kind %q, got %q", KindSync, msg.Kind)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected a timestamp")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 42 || got.Version != 3 || got.Kind != KindSync {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestDeleteMessageRoundTrip(t *testing.T) {
	msg := NewTransactionDeleteMessage(7)
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionDeleteMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 7 || got.Kind != KindDelete {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestMessageKindRouting(t *testing.T) {
	sync, _ := NewTransactionSyncMessage(1, 1).ToJSON()
	del, _ := NewTransactionDeleteMessage(1).ToJSON()

	if kind, err := messageKind(sync); err != nil || kind != KindSync {
		t.Fatalf("sync: expected %q, got %q (err=%v)", KindSync, kind, err)
	}
	if kind, err := messageKind(del); err != nil || kind != KindDelete {
		t.Fatalf("delete: expected %q, got %q (err=%v)", KindDelete, kind, err)
	}
	if _, err := messageKind([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}

	// A payload without a discriminator parses to an empty kind, which the
	// consumer drops instead of guessing.
	if kind, err := messageKind([]byte(`{"id":5,"version":1,"timestamp":"` + time.Now().Format(time.RFC3339) + `"}`)); err != nil || kind != "" {
		t.Fatalf("missing kind: expected empty string, got %q (err=%v)", kind, err)
	}
}
