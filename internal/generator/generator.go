package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/MikeSquared-Agency/promptpin/internal/lexicon"
)

// Completer is an LLM that answers a single system + user turn.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Rand picks template parts. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator synthesizes prompts when none can be mined from a video, and
// authors prompts on request.
type Generator struct {
	llm    Completer
	rng    Rand
	lex    *lexicon.Lexicon
	logger *slog.Logger
	now    func() time.Time

	lowSignal map[string]struct{}
	adverbs   map[string]struct{}
	function  map[string]struct{}
	excluded  map[string]struct{}
	fallback  map[string]struct{}
}

// New builds a Generator. A nil rng uses the math/rand/v2 global source and
// a nil lex uses the embedded tables.
func New(llm Completer, rng Rand, lex *lexicon.Lexicon, logger *slog.Logger) *Generator {
	if rng == nil {
		rng = globalRand{}
	}
	if lex == nil {
		lex = lexicon.Default()
	}
	fallback := append(append([]string(nil), lex.FallbackVerbs...), lex.FallbackNouns...)
	return &Generator{
		llm:       llm,
		rng:       rng,
		lex:       lex,
		logger:    logger,
		now:       time.Now,
		lowSignal: lexicon.Set(lex.LowSignalTerms),
		adverbs:   lexicon.Set(lex.Adverbs),
		function:  lexicon.Set(lex.FunctionWords),
		excluded:  lexicon.Set(lex.ExcludedTokens),
		fallback:  lexicon.Set(fallback),
	}
}

// GenerateCreativePrompt assembles a templated prompt from source and asks the
// LLM to polish it. Any LLM failure returns the templated string unchanged.
func (g *Generator) GenerateCreativePrompt(ctx context.Context, source string) string {
	template := g.Template(source)
	if g.llm == nil {
		return template
	}

	rewritten, err := g.llm.Complete(ctx, rewriteSystemPrompt, fmt.Sprintf(rewriteUserPrompt, template))
	if err != nil {
		g.logger.Warn("prompt rewrite failed, using template", "error", err)
		return template
	}
	rewritten = strings.Trim(strings.TrimSpace(rewritten), `"`)
	if rewritten == "" {
		g.logger.Warn("prompt rewrite returned empty text, using template")
		return template
	}
	return rewritten
}

// Template renders "{starter} {keyword} {ending}" from source.
func (g *Generator) Template(source string) string {
	keywords := g.Keywords(source)
	if len(keywords) == 0 {
		keywords = []string{g.fallbackKeyword(source)}
	}
	starter := g.lex.Starters[g.rng.IntN(len(g.lex.Starters))]
	ending := g.lex.Endings[g.rng.IntN(len(g.lex.Endings))]
	keyword := keywords[g.rng.IntN(len(keywords))]
	return fmt.Sprintf("%s %s %s", starter, keyword, ending)
}

// Keywords returns the distinct content words of source in first-seen order.
func (g *Generator) Keywords(source string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range strings.Fields(strings.ToLower(source)) {
		if strings.HasPrefix(raw, "#") {
			continue
		}
		w := trimPunct(raw)
		if len([]rune(w)) <= 3 || !isAlpha(w) || strings.HasSuffix(w, "ly") {
			continue
		}
		if in(g.lowSignal, w) || in(g.adverbs, w) || in(g.function, w) || in(g.excluded, w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func (g *Generator) fallbackKeyword(source string) string {
	for _, raw := range strings.Fields(strings.ToLower(source)) {
		if w := trimPunct(strings.TrimPrefix(raw, "#")); in(g.fallback, w) {
			return w
		}
	}
	return g.lex.DefaultKeyword
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func in(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}
