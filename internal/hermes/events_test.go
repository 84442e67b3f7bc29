package hermes

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseHarvestRequest(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantFeed string
		wantBy   string
		wantErr  bool
	}{
		{"empty payload", "", "trending", "", false},
		{"empty object", "{}", "trending", "", false},
		{"explicit feed", `{"feed":"trending","requested_by":"ops"}`, "trending", "ops", false},
		{"other feed kept", `{"feed":"following"}`, "following", "", false},
		{"malformed", `{"feed":`, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseHarvestRequest([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Feed != tt.wantFeed || req.RequestedBy != tt.wantBy {
				t.Errorf("got %+v, want feed %q requested_by %q", req, tt.wantFeed, tt.wantBy)
			}
		})
	}
}

func TestHarvestedEventWireNames(t *testing.T) {
	evt := HarvestedEvent{
		RunID:      "run-1",
		Feed:       "trending",
		Videos:     10,
		Prompts:    4,
		Skipped:    6,
		Trigger:    "schedule",
		FinishedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "feed", "videos", "prompts", "skipped", "duplicates", "trigger", "finished_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected field %q in %s", key, data)
		}
	}
}
