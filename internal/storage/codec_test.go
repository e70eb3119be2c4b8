package storage

import (
	"errors"
	"testing"
)

func TestRunRecordCodecRoundTrip(t *testing.T) {
	input := testRunRecord("run-1", "2026-08-25T10:00:00Z")

	payload, err := EncodeRunRecord(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeRunRecord(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.ID != input.ID || output.Seed != input.Seed || output.BestAgent != input.BestAgent {
		t.Fatalf("round trip mismatch: %+v", output)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	record := testRunRecord("run-1", "2026-08-25T10:00:00Z")
	record.SchemaVersion = CurrentSchemaVersion + 1

	payload, err := EncodeRunRecord(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRunRecord(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeRunRecord([]byte("{")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := DecodeFitnessHistory([]byte("not-json")); err == nil {
		t.Fatal("expected error for malformed history payload")
	}
}
