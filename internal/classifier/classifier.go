// Package classifier holds the boolean predicates that decide whether a piece
// of TikTok text looks like a usable AI prompt.
package classifier

import (
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/promptpin/internal/lexicon"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

const (
	MinPromptWords = 3
	MaxPromptWords = 20
)

var (
	mentionRe = regexp.MustCompile(`@[\p{L}\p{N}_.-]+`)
	hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_.-]+`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Classifier evaluates text against a set of word tables.
type Classifier struct {
	noise        []string
	labels       []string
	aiKeywords   []string
	hashtagTerms []string
	actionVerbs  []string
	unitsRe      *regexp.Regexp
	outcomeRe    *regexp.Regexp
}

func New(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{
		noise:        lowerAll(lex.NoisePhrases),
		labels:       lowerAll(lex.PromptLabels),
		aiKeywords:   lowerAll(lex.AIKeywords),
		hashtagTerms: lowerAll(lex.HashtagTerms),
		actionVerbs:  lowerAll(lex.ActionVerbs),
		unitsRe: regexp.MustCompile(`(?i)\bin\s+(?:\d+|one|two|three|four|five|six|seven|eight|nine|ten|a few)\s+(?:` +
			quoteAll(lex.OutcomeUnits) + `)\b`),
		outcomeRe: regexp.MustCompile(`(?i)\bthat\s+(?:` + quoteAll(lex.OutcomeVerbs) + `)\b`),
	}
}

var defaultClassifier = New(lexicon.Default())

// Default returns the classifier built from the embedded word tables.
func Default() *Classifier { return defaultClassifier }

func IsCleanPrompt(text string) bool { return defaultClassifier.IsCleanPrompt(text) }
func IsAIPromptRelated(text string) bool { return defaultClassifier.IsAIPromptRelated(text) }
func IsActionPrompt(text string) bool { return defaultClassifier.IsActionPrompt(text) }
func HasPromptLabel(text string) bool { return defaultClassifier.HasPromptLabel(text) }
func HasAIPromptsInHashtags(tags []tikapi.TextExtra) bool {
	return defaultClassifier.HasAIPromptsInHashtags(tags)
}

// StripTokens removes mentions, hashtags and URLs and collapses whitespace.
func StripTokens(text string) string {
	text = mentionRe.ReplaceAllString(text, "")
	text = hashtagRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// HasRawTokens reports whether text still carries a mention, hashtag or URL.
func HasRawTokens(text string) bool {
	return mentionRe.MatchString(text) || hashtagRe.MatchString(text) || urlRe.MatchString(text)
}

// IsCleanPrompt reports whether text is short enough to be a prompt and free
// of engagement bait.
func (c *Classifier) IsCleanPrompt(text string) bool {
	words := len(strings.Fields(StripTokens(text)))
	if words < MinPromptWords || words > MaxPromptWords {
		return false
	}
	return !containsAny(strings.ToLower(text), c.noise)
}

func (c *Classifier) IsAIPromptRelated(text string) bool {
	return containsAny(strings.ToLower(text), c.aiKeywords)
}

// IsActionPrompt reports whether text opens with an action verb and asks for
// a concrete outcome ("in 3 bullet points", "that explains ...").
func (c *Classifier) IsActionPrompt(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if !startsWithWord(lower, c.actionVerbs) {
		return false
	}
	return c.unitsRe.MatchString(lower) || c.outcomeRe.MatchString(lower)
}

// HasPromptLabel reports whether text still wraps its prompt in a label such
// as "prompt:".
func (c *Classifier) HasPromptLabel(text string) bool {
	return containsAny(strings.ToLower(text), c.labels)
}

func (c *Classifier) HasAIPromptsInHashtags(tags []tikapi.TextExtra) bool {
	for _, tag := range tags {
		if tag.Type != tikapi.HashtagType {
			continue
		}
		if containsAny(strings.ToLower(tag.HashtagName), c.hashtagTerms) {
			return true
		}
	}
	return false
}

func startsWithWord(s string, words []string) bool {
	for _, w := range words {
		if !strings.HasPrefix(s, w) {
			continue
		}
		rest := s[len(w):]
		if rest == "" || !isWordByte(rest[0]) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

func quoteAll(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(parts, "|")
}
