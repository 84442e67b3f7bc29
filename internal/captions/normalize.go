package captions

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/promptpin/internal/lexicon"
)

const (
	// MaxLength is the longest normalized transcript kept whole.
	MaxLength = 500
	// WindowLength is the size of the excerpt kept from an over-long transcript.
	WindowLength = 300
)

var (
	headerRe    = regexp.MustCompile(`^(?:WEBVTT|Kind:|Language:|STYLE|REGION|X-TIMESTAMP)`)
	noteRe      = regexp.MustCompile(`^NOTE\b`)
	cueTimingRe = regexp.MustCompile(`^(?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3}\s*-->`)
	arrowRe     = regexp.MustCompile(`^\s*-->`)
	indexRe     = regexp.MustCompile(`^\d+$`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
	spaceRe     = regexp.MustCompile(`\s+`)
	danglingRe  = regexp.MustCompile(`^(?:['\x{2019}]s\s+|is\s+|[\x{2014}\x{2013}]\s*)`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]*["'\x{201D}\x{2019}]?`)
)

// Normalizer turns caption payloads into plain prose.
type Normalizer struct {
	fillerRe      *regexp.Regexp
	boilerplateRe *regexp.Regexp
	keyPhrases    []*regexp.Regexp
}

// NewNormalizer compiles a Normalizer from the given word tables.
func NewNormalizer(lex *lexicon.Lexicon) *Normalizer {
	n := &Normalizer{}
	// Matched against the original text so offsets stay valid for slicing.
	for _, phrase := range lex.KeyPhrases {
		n.keyPhrases = append(n.keyPhrases, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	if len(lex.FillerWords) > 0 {
		n.fillerRe = regexp.MustCompile(`(?i)\b(?:` + alternation(lex.FillerWords) + `)\b,?`)
	}
	if len(lex.CaptionBoilerplate) > 0 {
		n.boilerplateRe = regexp.MustCompile(`(?is)\s*(?:` + alternation(lex.CaptionBoilerplate) + `).*$`)
	}
	return n
}

var defaultNormalizer = NewNormalizer(lexicon.Default())

// Normalize cleans raw with the embedded word tables.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize strips caption structure and transcript noise from raw. Plain
// text passes through the same cleanup. The result may be empty.
func (n *Normalizer) Normalize(raw string) string {
	if !utf8.ValidString(raw) {
		return ""
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case headerRe.MatchString(trimmed),
			noteRe.MatchString(trimmed),
			cueTimingRe.MatchString(trimmed),
			arrowRe.MatchString(trimmed),
			indexRe.MatchString(trimmed):
			kept = append(kept, "")
		default:
			kept = append(kept, tagRe.ReplaceAllString(line, ""))
		}
	}
	text := blankRunRe.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")

	// Boilerplate is cut before filler removal, which would otherwise eat
	// the "like" in "like and subscribe".
	text = n.cutBoilerplate(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if cleaned := n.cleanLine(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}

	result := spaceRe.ReplaceAllString(strings.Join(lines, " "), " ")
	result = strings.TrimSpace(danglingRe.ReplaceAllString(strings.TrimSpace(result), ""))
	result = n.cutBoilerplate(result)
	result = keepSentences(result)

	if utf8.RuneCountInString(result) > MaxLength {
		result = n.window(result)
	}
	return result
}

func (n *Normalizer) cleanLine(line string) string {
	original := strings.TrimSpace(line)
	if original == "" {
		return ""
	}
	out := original
	if n.fillerRe != nil {
		out = n.fillerRe.ReplaceAllString(out, "")
	}
	out = collapseRepeatedWords(out)
	out = collapseRepeatedPunct(out)
	out = strings.TrimSpace(spaceRe.ReplaceAllString(out, " "))
	out = strings.TrimLeft(out, ",;: ")

	first, _ := utf8.DecodeRuneInString(original)
	lead, size := utf8.DecodeRuneInString(out)
	if unicode.IsUpper(first) && unicode.IsLower(lead) {
		out = string(unicode.ToUpper(lead)) + out[size:]
	}
	return out
}

func (n *Normalizer) cutBoilerplate(s string) string {
	if n.boilerplateRe == nil {
		return s
	}
	return n.boilerplateRe.ReplaceAllString(s, "")
}

func (n *Normalizer) window(s string) string {
	for _, re := range n.keyPhrases {
		if loc := re.FindStringIndex(s); loc != nil {
			return strings.TrimSpace(truncateRunes(s[loc[0]:], WindowLength))
		}
	}
	return strings.TrimSpace(truncateRunes(s, WindowLength))
}

func collapseRepeatedWords(s string) string {
	words := strings.Fields(s)
	out := words[:0]
	for i, w := range words {
		if i > 0 && strings.EqualFold(w, words[i-1]) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func collapseRepeatedPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		if r == prev && strings.ContainsRune(".,!?", r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// keepSentences drops sentences that do not open with a capital letter or a
// quote mark.
func keepSentences(s string) string {
	var out []string
	for _, sentence := range sentenceRe.FindAllString(s, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(sentence)
		if unicode.IsUpper(first) || strings.ContainsRune("\"'“‘", first) {
			out = append(out, sentence)
		}
	}
	return strings.Join(out, " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// alternation builds a regexp alternation, longest phrase first so that
// multi-word entries win over their prefixes.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(parts, "|")
}
