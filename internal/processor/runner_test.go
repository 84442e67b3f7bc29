package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/MikeSquared-Agency/promptpin/internal/hermes"
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
	"github.com/MikeSquared-Agency/promptpin/internal/store"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

type fakeArchive struct {
	runs    []store.Run
	prompts [][]prompt.ExtractedPrompt
	err     error
}

func (a *fakeArchive) SaveRun(_ context.Context, run store.Run, prompts []prompt.ExtractedPrompt) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.runs = append(a.runs, run)
	a.prompts = append(a.prompts, prompts)
	return len(prompts), nil
}

type fakeCache struct {
	data      map[string][]prompt.ExtractedPrompt
	getErr    error
	deleteErr error
}

func (c *fakeCache) Get(_ context.Context, feed string) ([]prompt.ExtractedPrompt, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.data[feed]
	return p, ok, nil
}

func (c *fakeCache) Set(_ context.Context, feed string, prompts []prompt.ExtractedPrompt) error {
	if c.data == nil {
		c.data = map[string][]prompt.ExtractedPrompt{}
	}
	c.data[feed] = prompts
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, feed string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.data, feed)
	return nil
}

type published struct {
	subject string
	data    any
}

type fakePublisher struct {
	events []published
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.events = append(p.events, published{subject, data})
	return nil
}

func newTestRunner(archive Archive, cache ResultCache, pub Publisher) *Runner {
	src := &fakeSource{
		videos: []tikapi.RawVideo{
			video("a", "Use this AI prompt to plan a week of meals"),
			video("b", "Dance challenge"),
		},
	}
	return NewRunner(New(src, nil, DefaultOptions(), discardLogger()), archive, cache, pub, discardLogger())
}

func TestRunner_Run(t *testing.T) {
	archive := &fakeArchive{}
	cache := &fakeCache{}
	pub := &fakePublisher{}
	r := newTestRunner(archive, cache, pub)

	res, err := r.Run(context.Background(), FeedTrending, "schedule")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(archive.runs) != 1 {
		t.Fatalf("expected 1 archived run, got %d", len(archive.runs))
	}
	run := archive.runs[0]
	if run.ID.String() != res.RunID || run.Trigger != "schedule" || run.Videos != 2 || run.Prompts != 1 || run.Skipped != 1 {
		t.Errorf("unexpected archived run %+v", run)
	}

	if cached := cache.data[FeedTrending]; len(cached) != 1 || cached[0].PromptText != res.Prompts[0].PromptText {
		t.Errorf("expected cache refreshed, got %+v", cached)
	}

	if len(pub.events) != 1 || pub.events[0].subject != hermes.SubjectHarvested {
		t.Fatalf("expected one harvested event, got %+v", pub.events)
	}
	evt, ok := pub.events[0].data.(hermes.HarvestedEvent)
	if !ok {
		t.Fatalf("expected HarvestedEvent payload, got %T", pub.events[0].data)
	}
	if evt.RunID != res.RunID || evt.Prompts != 1 || evt.Skipped != 1 || evt.Trigger != "schedule" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestRunner_ArchiveFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{}
	r := newTestRunner(&fakeArchive{err: errors.New("db down")}, nil, pub)

	if _, err := r.Run(context.Background(), FeedTrending, "api"); err != nil {
		t.Fatalf("expected archive failure to be swallowed, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Errorf("expected event published despite archive failure, got %d", len(pub.events))
	}
}

func TestRunner_HarvestFailureSkipsSideEffects(t *testing.T) {
	archive := &fakeArchive{}
	pub := &fakePublisher{}
	r := newTestRunner(archive, nil, pub)

	if _, err := r.Run(context.Background(), "following", "api"); !errors.Is(err, ErrUnsupportedFeed) {
		t.Fatalf("expected ErrUnsupportedFeed, got %v", err)
	}
	if len(archive.runs) != 0 || len(pub.events) != 0 {
		t.Errorf("expected no side effects, got runs=%d events=%d", len(archive.runs), len(pub.events))
	}
}

func TestRunner_Cached(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		r := newTestRunner(nil, nil, nil)
		if _, ok := r.Cached(context.Background(), FeedTrending); ok {
			t.Error("expected miss without a cache")
		}
	})

	t.Run("cache error is a miss", func(t *testing.T) {
		r := newTestRunner(nil, &fakeCache{getErr: errors.New("redis down")}, nil)
		if _, ok := r.Cached(context.Background(), FeedTrending); ok {
			t.Error("expected miss on cache error")
		}
	})

	t.Run("hit", func(t *testing.T) {
		cache := &fakeCache{data: map[string][]prompt.ExtractedPrompt{
			FeedTrending: {{ID: "1", PromptText: "cached"}},
		}}
		r := newTestRunner(nil, cache, nil)
		got, ok := r.Cached(context.Background(), FeedTrending)
		if !ok || len(got) != 1 || got[0].PromptText != "cached" {
			t.Errorf("expected cached prompts, got ok=%v %+v", ok, got)
		}
	})
}

func TestRunner_Invalidate(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		r := newTestRunner(nil, nil, nil)
		r.Invalidate(context.Background(), FeedTrending)
	})

	t.Run("drops entry", func(t *testing.T) {
		cache := &fakeCache{data: map[string][]prompt.ExtractedPrompt{
			FeedTrending: {{ID: "1", PromptText: "stale"}},
		}}
		r := newTestRunner(nil, cache, nil)
		r.Invalidate(context.Background(), FeedTrending)
		if _, ok := r.Cached(context.Background(), FeedTrending); ok {
			t.Error("expected miss after invalidate")
		}
	})

	t.Run("error is logged only", func(t *testing.T) {
		cache := &fakeCache{deleteErr: errors.New("redis down")}
		r := newTestRunner(nil, cache, nil)
		r.Invalidate(context.Background(), FeedTrending)
	})
}

func TestRunner_HandleHarvestRequested(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		events int
	}{
		{"empty payload harvests trending", nil, 1},
		{"explicit feed", []byte(`{"feed":"trending","requested_by":"ops"}`), 1},
		{"unsupported feed", []byte(`{"feed":"following"}`), 0},
		{"malformed payload", []byte(`{not json`), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			r := newTestRunner(nil, nil, pub)

			r.HandleHarvestRequested(hermes.SubjectHarvestRequested, tt.data)

			if len(pub.events) != tt.events {
				t.Fatalf("expected %d events, got %d", tt.events, len(pub.events))
			}
			if tt.events > 0 {
				if evt := pub.events[0].data.(hermes.HarvestedEvent); evt.Trigger != "nats" {
					t.Errorf("expected nats trigger, got %q", evt.Trigger)
				}
			}
		})
	}
}
