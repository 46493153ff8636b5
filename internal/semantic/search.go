package semantic

import (
	"context"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/promptdeck/internal/model"
)

const (
	searchScoreThreshold = 0.25
	maxSearchCandidates  = 200
)

// Match is one scored search hit.
type Match struct {
	Prompt model.Prompt `json:"prompt"`
	Score  float32      `json:"score"`
}

// Search ranks prompts against the query by cosine similarity. A blank query
// returns the input unchanged; an unavailable runtime or a query that fails
// to embed degrades to keyword filtering. Candidates beyond the cap are never
// scored, and a candidate that fails to embed is silently excluded.
func (e *Engine) Search(ctx context.Context, query string, prompts []model.Prompt) []Match {
	if strings.TrimSpace(query) == "" {
		out := make([]Match, 0, len(prompts))
		for _, p := range prompts {
			out = append(out, Match{Prompt: p})
		}
		return out
	}
	qv := e.Embed(ctx, query)
	if len(qv) == 0 {
		return keywordFilter(query, prompts)
	}
	candidates := prompts
	if len(candidates) > maxSearchCandidates {
		logutil.GetLogger(ctx).Info("search candidate cap reached",
			zap.Int("total", len(prompts)),
			zap.Int("excluded", len(prompts)-maxSearchCandidates))
		candidates = candidates[:maxSearchCandidates]
	}
	call := make(map[string][]float32, len(candidates))
	matches := make([]Match, 0, len(candidates))
	for _, p := range candidates {
		vec := e.resolveVector(ctx, p, call)
		if len(vec) == 0 {
			continue
		}
		if score := Cosine(qv, vec); score > searchScoreThreshold {
			matches = append(matches, Match{Prompt: p, Score: score})
		}
	}
	// Stable: equal scores keep their input order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// resolveVector finds a prompt's vector for the duration of one call:
// per-call cache, then the persisted embedding, then the per-id cache, then a
// fresh computation recorded in both caches.
func (e *Engine) resolveVector(ctx context.Context, p model.Prompt, call map[string][]float32) []float32 {
	key := p.ID
	if key == "" {
		key = compositeKey(p)
	}
	if vec, ok := call[key]; ok {
		return vec
	}
	if len(p.Embedding) > 0 {
		call[key] = p.Embedding
		return p.Embedding
	}
	if vec, ok := e.cached(p.ID); ok {
		call[key] = vec
		return vec
	}
	vec := e.EmbedPrompt(ctx, p)
	if len(vec) == 0 {
		return nil
	}
	call[key] = vec
	e.Prime(p.ID, vec)
	return vec
}

func compositeKey(p model.Prompt) string {
	return strings.ToLower(strings.TrimSpace(p.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Text))
}

// keywordFilter is the degraded search path: case-insensitive substring match
// over title, text and the joined tag list, input order preserved.
func keywordFilter(query string, prompts []model.Prompt) []Match {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Match, 0)
	for _, p := range prompts {
		haystack := strings.ToLower(p.Title + " " + p.Text + " " + strings.Join(p.Tags, " "))
		if strings.Contains(haystack, needle) {
			out = append(out, Match{Prompt: p})
		}
	}
	return out
}
