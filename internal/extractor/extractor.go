package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/promptpin/internal/classifier"
	"github.com/MikeSquared-Agency/promptpin/internal/lexicon"
)

var (
	quotedRe   = regexp.MustCompile(`["\x{201C}\x{201D}]([^"\x{201C}\x{201D}]+)["\x{201C}\x{201D}]`)
	sentenceRe = regexp.MustCompile(`[^.!?]+`)
	newlineRe  = regexp.MustCompile(`[\r\n]+`)
)

// Input is the state threaded through the strategy chain.
type Input struct {
	Raw     string
	Cleaned string
}

// Strategy is one step of the extraction chain. When done is true the chain
// stops and prompt is the result, which may be empty.
type Strategy struct {
	Name  string
	Apply func(in *Input) (prompt string, done bool)
}

// Extractor pulls a clean prompt out of free text by running its strategies
// in order until one settles the outcome.
type Extractor struct {
	classifier    *classifier.Classifier
	indicators    []*regexp.Regexp
	boilerplateRe *regexp.Regexp
	strategies    []Strategy
}

func New(c *classifier.Classifier, lex *lexicon.Lexicon) *Extractor {
	e := &Extractor{classifier: c}
	for _, phrase := range lex.IndicatorPhrases {
		e.indicators = append(e.indicators,
			regexp.MustCompile(`(?is)(?:`+regexp.QuoteMeta(phrase)+`):?\s*(.*)`))
	}
	if len(lex.PromptBoilerplate) > 0 {
		e.boilerplateRe = regexp.MustCompile(`(?is)\s*(?:` + alternation(lex.PromptBoilerplate) + `).*$`)
	}
	e.strategies = []Strategy{
		{Name: "topical_gate", Apply: e.topicalGate},
		{Name: "already_clean", Apply: e.alreadyClean},
		{Name: "strip_tokens", Apply: e.stripTokens},
		{Name: "quoted", Apply: e.quoted},
		{Name: "indicator", Apply: e.indicator},
		{Name: "sentence", Apply: e.sentence},
		{Name: "action", Apply: e.action},
	}
	return e
}

var defaultExtractor = New(classifier.Default(), lexicon.Default())

// ExtractCleanPrompt runs the default chain over text. An empty result means
// no prompt was found.
func ExtractCleanPrompt(text string) string {
	return defaultExtractor.Extract(text)
}

// Strategies returns the chain in evaluation order.
func (e *Extractor) Strategies() []Strategy {
	return e.strategies
}

func (e *Extractor) Extract(text string) string {
	if !utf8.ValidString(text) {
		return ""
	}
	in := &Input{Raw: text, Cleaned: text}
	for _, s := range e.strategies {
		if prompt, done := s.Apply(in); done {
			return prompt
		}
	}
	return ""
}

func (e *Extractor) topicalGate(in *Input) (string, bool) {
	if !e.classifier.IsAIPromptRelated(in.Raw) {
		return "", true
	}
	return "", false
}

// alreadyClean accepts text that is a prompt as-is: short, free of noise and
// raw tokens, and not still wrapped in a "prompt:" label.
func (e *Extractor) alreadyClean(in *Input) (string, bool) {
	if e.classifier.IsCleanPrompt(in.Raw) &&
		!classifier.HasRawTokens(in.Raw) &&
		!e.classifier.HasPromptLabel(in.Raw) {
		return strings.TrimSpace(in.Raw), true
	}
	return "", false
}

func (e *Extractor) stripTokens(in *Input) (string, bool) {
	in.Cleaned = classifier.StripTokens(newlineRe.ReplaceAllString(in.Raw, " "))
	return "", false
}

func (e *Extractor) quoted(in *Input) (string, bool) {
	for _, m := range quotedRe.FindAllStringSubmatch(in.Cleaned, -1) {
		inner := strings.TrimSpace(m[1])
		if e.classifier.IsCleanPrompt(inner) {
			return inner, true
		}
	}
	return "", false
}

// indicator takes whatever follows the first matching indicator phrase.
// A capture that is not a clean prompt falls through to the next phrase.
func (e *Extractor) indicator(in *Input) (string, bool) {
	for _, re := range e.indicators {
		m := re.FindStringSubmatch(in.Cleaned)
		if m == nil {
			continue
		}
		rest := m[1]
		if e.boilerplateRe != nil {
			rest = e.boilerplateRe.ReplaceAllString(rest, "")
		}
		rest = strings.TrimSpace(rest)
		if e.classifier.IsCleanPrompt(rest) {
			return rest, true
		}
	}
	return "", false
}

func (e *Extractor) sentence(in *Input) (string, bool) {
	for _, s := range sentenceRe.FindAllString(in.Cleaned, -1) {
		s = strings.TrimSpace(s)
		if e.classifier.IsCleanPrompt(s) && e.classifier.IsAIPromptRelated(s) {
			return s, true
		}
	}
	return "", false
}

func (e *Extractor) action(in *Input) (string, bool) {
	if e.classifier.IsActionPrompt(in.Cleaned) {
		return in.Cleaned, true
	}
	return "", false
}

func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, w := range sorted {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(parts, "|")
}
