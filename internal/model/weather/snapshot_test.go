package weather

import (
	"encoding/json"
	"testing"
)

func TestSnapshotMarshalsUnavailableReadings(t *testing.T) {
	data, err := json.Marshal(Empty())
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if decoded["temperature"] != "N/A" {
		t.Fatalf("temperature = %v, want N/A", decoded["temperature"])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := New(12.5, 68, 0.2)

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}

	temp, ok := got.Temperature.Value()
	if !ok || temp != 12.5 {
		t.Fatalf("temperature = %v/%v, want 12.5/true", temp, ok)
	}
	if !got.OK() {
		t.Fatal("expected successful snapshot")
	}
}

func TestFailedSnapshotIsDisplayable(t *testing.T) {
	snap := Failed("Could not reach weather service.")

	if snap.OK() {
		t.Fatal("failed snapshot reported OK")
	}
	if _, ok := snap.Temperature.Value(); ok {
		t.Fatal("failed snapshot carries a temperature reading")
	}
}
