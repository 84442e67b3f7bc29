package dedup

import (
	"sort"

	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
)

// Rank orders prompts in place by popularity. Prompts with a like count come
// first, highest count first; prompts without one keep their relative order
// after them.
func Rank(prompts []prompt.ExtractedPrompt) {
	sort.SliceStable(prompts, func(i, j int) bool {
		a, b := prompts[i].LikeCount, prompts[j].LikeCount
		switch {
		case a != nil && b == nil:
			return true
		case a != nil && b != nil:
			return *a > *b
		default:
			return false
		}
	})
}
