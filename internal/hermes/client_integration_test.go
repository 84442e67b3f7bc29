//go:build integration

package hermes

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_HarvestRequestRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan HarvestRequest, 1)

	err = client.Subscribe(SubjectHarvestRequested, func(subject string, data []byte) {
		req, err := ParseHarvestRequest(data)
		if err != nil {
			t.Errorf("parse: %v", err)
			return
		}
		received <- req
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	if err := client.Publish(SubjectHarvestRequested, HarvestRequest{RequestedBy: "integration-test"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case req := <-received:
		if req.Feed != "trending" || req.RequestedBy != "integration-test" {
			t.Errorf("unexpected request %+v", req)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
