// Package prompt defines the records the harvester emits.
package prompt

import (
	"strings"
	"unicode/utf8"
)

// MaxTextLength bounds PromptText in runes.
const MaxTextLength = 500

// SourceKind names where a prompt was found.
type SourceKind string

const (
	SourceCaptions    SourceKind = "captions"
	SourceDescription SourceKind = "description"
	SourceComment     SourceKind = "comment"
	SourceGenerated   SourceKind = "generated"
)

// ExtractedPrompt is built once per successfully processed video and is not
// modified afterwards.
type ExtractedPrompt struct {
	ID           string     `json:"id"`
	PromptText   string     `json:"promptText"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	VideoURL     string     `json:"videoUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	LikeCount    *int64     `json:"likeCount,omitempty"`
	SourceKind   SourceKind `json:"sourceKind"`
	VideoID      string     `json:"videoId,omitempty"`
}

// Key is the identity used for de-duplication: trimmed and lower-cased text.
func (p ExtractedPrompt) Key() string {
	return Key(p.PromptText)
}

func Key(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Truncate cuts s to at most MaxTextLength runes.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextLength {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:MaxTextLength]))
}

// Int64 returns a pointer to v, for optional counts.
func Int64(v int64) *int64 {
	return &v
}
