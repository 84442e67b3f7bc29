package dedup

import (
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

// Unique drops every prompt whose trimmed, lower-cased text was already seen,
// keeping the first occurrence. It returns the survivors and the number of
// duplicates removed.
func Unique(prompts []prompt.ExtractedPrompt) ([]prompt.ExtractedPrompt, int) {
	seen := make(map[string]struct{}, len(prompts))
	out := make([]prompt.ExtractedPrompt, 0, len(prompts))
	for _, p := range prompts {
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out, len(prompts) - len(out)
}
