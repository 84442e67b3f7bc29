package classifier

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

func TestIsCleanPrompt(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Write a haiku about the ocean", true},
		{"Too short", false},
		{"Write @friend #fyp https://x.co/abc", false},
		{"Write a haiku @friend about the ocean #fyp", true},
		{"Follow for more prompts like this one", false},
		{"Please like and subscribe to my channel", false},
		{"Save this prompt for later okay", false},
		{strings.Repeat("word ", 20), true},
		{strings.Repeat("word ", 21), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCleanPrompt(tt.text); got != tt.want {
			t.Errorf("IsCleanPrompt(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestIsCleanPrompt_WordBounds(t *testing.T) {
	for n := 0; n <= 25; n++ {
		text := strings.TrimSpace(strings.Repeat("draft ", n))
		got := IsCleanPrompt(text)
		want := n >= MinPromptWords && n <= MaxPromptWords
		if got != want {
			t.Errorf("%d words: IsCleanPrompt = %v, want %v", n, got, want)
		}
	}
}

func TestIsAIPromptRelated(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Best AI prompt for students", true},
		{"My CHATGPT PROMPT of the week", true},
		{"prompt: write a poem", true},
		{"Check this out #chatgpt #viral", true},
		{"#PromptEngineering is fun", true},
		{"Write a haiku about the ocean", false},
		{"My morning routine", false},
	}
	for _, tt := range tests {
		if got := IsAIPromptRelated(tt.text); got != tt.want {
			t.Errorf("IsAIPromptRelated(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestIsActionPrompt(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Write a blog intro in 3 paragraphs", true},
		{"  Summarize this article in five bullet points", true},
		{"Create a study guide that explains photosynthesis", true},
		{"Write a blog intro", false},
		{"Writer tips in 3 paragraphs", false},
		{"Please write a blog intro in 3 paragraphs", false},
		{"Explain it that way", false},
	}
	for _, tt := range tests {
		if got := IsActionPrompt(tt.text); got != tt.want {
			t.Errorf("IsActionPrompt(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasAIPromptsInHashtags(t *testing.T) {
	tests := []struct {
		name string
		tags []tikapi.TextExtra
		want bool
	}{
		{"ai hashtag", []tikapi.TextExtra{{Type: 1, HashtagName: "ChatGPTHacks"}}, true},
		{"prompt hashtag", []tikapi.TextExtra{{Type: 1, HashtagName: "fyp"}, {Type: 1, HashtagName: "prompts"}}, true},
		{"not a hashtag", []tikapi.TextExtra{{Type: 0, HashtagName: "chatgpt"}}, false},
		{"unrelated", []tikapi.TextExtra{{Type: 1, HashtagName: "cooking"}}, false},
		{"none", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAIPromptsInHashtags(tt.tags); got != tt.want {
				t.Errorf("HasAIPromptsInHashtags = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripTokens(t *testing.T) {
	got := StripTokens("Write  a poem @bob about #love https://t.co/xyz \n now")
	if got != "Write a poem about now" {
		t.Errorf("unexpected strip result %q", got)
	}
	if HasRawTokens(got) {
		t.Errorf("stripped text %q still has raw tokens", got)
	}
}
