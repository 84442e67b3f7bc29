package dedup

import (
	"testing"

	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

func TestUnique(t *testing.T) {
	in := []prompt.ExtractedPrompt{
		{ID: "a", PromptText: "Write a haiku about the ocean"},
		{ID: "b", PromptText: "write a haiku about the ocean  "},
		{ID: "c", PromptText: "Plan a week of meals"},
		{ID: "d", PromptText: "  PLAN A WEEK OF MEALS"},
	}

	out, dropped := Unique(in)

	if dropped != 2 {
		t.Errorf("expected 2 duplicates dropped, got %d", dropped)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("expected first occurrences a and c, got %+v", out)
	}
}

func TestUnique_Empty(t *testing.T) {
	out, dropped := Unique(nil)
	if len(out) != 0 || dropped != 0 {
		t.Errorf("expected nothing, got %d kept %d dropped", len(out), dropped)
	}
}

func likes(prompts []prompt.ExtractedPrompt) []any {
	var out []any
	for _, p := range prompts {
		if p.LikeCount == nil {
			out = append(out, nil)
		} else {
			out = append(out, *p.LikeCount)
		}
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name string
		in   []prompt.ExtractedPrompt
		want []string
	}{
		{
			name: "counts before missing",
			in: []prompt.ExtractedPrompt{
				{ID: "five", LikeCount: prompt.Int64(5)},
				{ID: "none"},
				{ID: "twenty", LikeCount: prompt.Int64(20)},
			},
			want: []string{"twenty", "five", "none"},
		},
		{
			name: "missing keep insertion order",
			in: []prompt.ExtractedPrompt{
				{ID: "n1"},
				{ID: "c1", LikeCount: prompt.Int64(1)},
				{ID: "n2"},
				{ID: "n3"},
			},
			want: []string{"c1", "n1", "n2", "n3"},
		},
		{
			name: "equal counts stable",
			in: []prompt.ExtractedPrompt{
				{ID: "x", LikeCount: prompt.Int64(7)},
				{ID: "y", LikeCount: prompt.Int64(7)},
				{ID: "zero", LikeCount: prompt.Int64(0)},
			},
			want: []string{"x", "y", "zero"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Rank(tt.in)
			for i, id := range tt.want {
				if tt.in[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s (likes %v)", i, id, tt.in[i].ID, likes(tt.in))
				}
			}
		})
	}
}
