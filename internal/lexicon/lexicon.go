package lexicon

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultDocument []byte

// Lexicon holds every word table the prompt pipeline consults.
type Lexicon struct {
	FillerWords        []string `yaml:"filler_words"`
	CaptionBoilerplate []string `yaml:"caption_boilerplate"`
	KeyPhrases         []string `yaml:"key_phrases"`
	NoisePhrases       []string `yaml:"noise_phrases"`
	PromptLabels       []string `yaml:"prompt_labels"`
	AIKeywords         []string `yaml:"ai_keywords"`
	HashtagTerms       []string `yaml:"hashtag_terms"`
	ActionVerbs        []string `yaml:"action_verbs"`
	OutcomeUnits       []string `yaml:"outcome_units"`
	OutcomeVerbs       []string `yaml:"outcome_verbs"`
	IndicatorPhrases   []string `yaml:"indicator_phrases"`
	PromptBoilerplate  []string `yaml:"prompt_boilerplate"`
	LowSignalTerms     []string `yaml:"low_signal_terms"`
	Adverbs            []string `yaml:"adverbs"`
	FunctionWords      []string `yaml:"function_words"`
	ExcludedTokens     []string `yaml:"excluded_tokens"`
	FallbackVerbs      []string `yaml:"fallback_verbs"`
	FallbackNouns      []string `yaml:"fallback_nouns"`
	DefaultKeyword     string   `yaml:"default_keyword"`
	Starters           []string `yaml:"starters"`
	Endings            []string `yaml:"endings"`
}

var (
	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

// Default returns the tables embedded in the binary. The result is shared and
// must not be modified.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultDocument)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded tables: %v", err))
		}
		defaultLexicon = lex
	})
	return defaultLexicon
}

// Parse decodes a YAML lexicon document.
func Parse(doc []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(doc, &lex); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) validate() error {
	required := map[string][]string{
		"ai_keywords":       l.AIKeywords,
		"action_verbs":      l.ActionVerbs,
		"outcome_units":     l.OutcomeUnits,
		"outcome_verbs":     l.OutcomeVerbs,
		"indicator_phrases": l.IndicatorPhrases,
		"starters":          l.Starters,
		"endings":           l.Endings,
	}
	for name, list := range required {
		if len(list) == 0 {
			return fmt.Errorf("lexicon: %s must not be empty", name)
		}
	}
	if l.DefaultKeyword == "" {
		return fmt.Errorf("lexicon: default_keyword must not be empty")
	}
	return nil
}

// Set builds a lookup set from a word list.
func Set(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
