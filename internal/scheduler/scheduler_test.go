package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdd_InvalidSpec(t *testing.T) {
	s := New(discardLogger())
	if err := s.Add("not a schedule", "harvest", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	if s.Len() != 0 {
		t.Errorf("expected no entries, got %d", s.Len())
	}
}

func TestAdd_ValidSpecs(t *testing.T) {
	s := New(discardLogger())
	for _, spec := range []string{"*/15 * * * *", "@every 30m", "@hourly"} {
		if err := s.Add(spec, "harvest", func(context.Context) error { return nil }); err != nil {
			t.Errorf("spec %q: unexpected error: %v", spec, err)
		}
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", s.Len())
	}
}

func TestRun_SkipsWhileBusy(t *testing.T) {
	s := New(discardLogger())
	var (
		busy  atomic.Bool
		calls atomic.Int32
	)
	release := make(chan struct{})
	started := make(chan struct{})

	job := func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.run("harvest", job, &busy)
		close(done)
	}()
	<-started

	s.run("harvest", job, &busy)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected overlapping run to be skipped, got %d calls", got)
	}

	close(release)
	<-done
	if busy.Load() {
		t.Error("expected busy flag cleared after run")
	}
}

func TestRun_ErrorClearsBusy(t *testing.T) {
	s := New(discardLogger())
	var busy atomic.Bool

	s.run("harvest", func(context.Context) error { return errors.New("boom") }, &busy)
	if busy.Load() {
		t.Error("expected busy flag cleared after failed run")
	}
}

func TestStop_CancelsJobContext(t *testing.T) {
	s := New(discardLogger())
	s.Start()
	<-s.Stop().Done()

	select {
	case <-s.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected job context cancelled after Stop")
	}
}
