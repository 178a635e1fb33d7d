package amqp

import (
	"testing"
	"time"
)

func TestMutationMessageJSON(t *testing.T) {
	msg := NewMutationMessage(KindUpdate, "tx-42", 0)
	if msg.Timestamp.IsZero() {
		t.Error("NewMutationMessage() left Timestamp zero")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := MutationMessageFromJSON(body)
	if err != nil {
		t.Fatalf("MutationMessageFromJSON() error = %v", err)
	}
	if got.Kind != KindUpdate || got.TxID != "tx-42" {
		t.Errorf("decoded = %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("timestamp drifted: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestMutationMessageFromJSONInvalid(t *testing.T) {
	if _, err := MutationMessageFromJSON([]byte("not json")); err == nil {
		t.Error("MutationMessageFromJSON() accepted garbage")
	}
}

func TestImportMessageCarriesRows(t *testing.T) {
	msg := NewMutationMessage(KindImport, "", 37)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := MutationMessageFromJSON(body)
	if err != nil {
		t.Fatalf("MutationMessageFromJSON() error = %v", err)
	}
	if got.Rows != 37 || got.TxID != "" {
		t.Errorf("decoded = %+v, want 37 rows and no tx id", got)
	}
}
