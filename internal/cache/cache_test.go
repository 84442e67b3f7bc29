package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

func setupCache(t *testing.T) (*PromptCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute), mr
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupCache(t)

	prompts, ok, err := c.Get(context.Background(), "trending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || prompts != nil {
		t.Errorf("expected miss, got ok=%v prompts=%v", ok, prompts)
	}
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	in := []prompt.ExtractedPrompt{
		{ID: "1", PromptText: "Write a poem about AI", LikeCount: prompt.Int64(12), SourceKind: prompt.SourceComment},
		{ID: "2", PromptText: "Plan a week of meals", SourceKind: prompt.SourceDescription},
	}
	if err := c.Set(ctx, "trending", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if ttl := mr.TTL("promptpin:prompts:trending"); ttl != time.Minute {
		t.Errorf("expected 1m ttl, got %v", ttl)
	}

	out, ok, err := c.Get(ctx, "trending")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(out) != 2 || out[0].PromptText != in[0].PromptText {
		t.Fatalf("unexpected prompts: %+v", out)
	}
	if out[0].LikeCount == nil || *out[0].LikeCount != 12 {
		t.Errorf("expected like count 12, got %v", out[0].LikeCount)
	}
	if out[1].LikeCount != nil {
		t.Errorf("expected missing like count to stay missing, got %v", *out[1].LikeCount)
	}
}

func TestSet_NilStoresEmptyList(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "trending", nil); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	out, ok, err := c.Get(ctx, "trending")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", out)
	}
}

func TestExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "trending", []prompt.ExtractedPrompt{{ID: "1", PromptText: "x"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "trending"); ok {
		t.Error("expected entry to expire")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "trending", []prompt.ExtractedPrompt{{ID: "1", PromptText: "x"}})
	if err := c.Invalidate(ctx, "trending"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "trending"); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestGet_RedisDown(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	if _, ok, err := c.Get(context.Background(), "trending"); err == nil || ok {
		t.Errorf("expected error with redis down, got ok=%v err=%v", ok, err)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	c := New(nil, 0)
	if c.ttl != DefaultTTL {
		t.Errorf("expected default ttl, got %v", c.ttl)
	}
}
