package semantic

import (
	"context"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	tagScoreThreshold = 0.4
	maxSuggestedTags  = 2
)

// DefaultVocabulary is the closed label set used as anchors for tag
// suggestion when the config does not override it.
func DefaultVocabulary() []string {
	return []string{
		"coding",
		"debugging",
		"writing",
		"research",
		"brainstorming",
		"translation",
		"summarization",
		"roleplay",
	}
}

// warmLabels embeds the whole vocabulary once per successful load. Vectors
// live until the next Reset; a label that fails to embed is simply absent
// from suggestions.
func (e *Engine) warmLabels(ctx context.Context) {
	labels := make(map[string][]float32, len(e.vocab))
	for _, label := range e.vocab {
		vec := e.Embed(ctx, label)
		if len(vec) == 0 {
			logutil.GetLogger(ctx).Warn("label embedding failed", zap.String("label", label))
			continue
		}
		labels[label] = vec
	}
	e.mu.Lock()
	e.labels = labels
	e.mu.Unlock()
	logutil.GetLogger(ctx).Info("label cache warmed", zap.Int("labels", len(labels)))
}

// SuggestTags scores text against the cached label vocabulary and returns at
// most two labels strictly above the threshold, best first. There is no
// keyword fallback here: an unavailable runtime yields no suggestions.
func (e *Engine) SuggestTags(ctx context.Context, text string) []string {
	if !e.ready.Load() {
		return nil
	}
	if e.settings != nil {
		if prefix := e.settings.SearchContext(ctx); prefix != "" {
			text = prefix + "\n" + text
		}
	}
	vec := e.Embed(ctx, text)
	if len(vec) == 0 {
		return nil
	}
	e.mu.RLock()
	labels := e.labels
	e.mu.RUnlock()

	type scored struct {
		name  string
		score float32
	}
	candidates := make([]scored, 0, len(labels))
	for _, name := range e.vocab {
		lv, ok := labels[name]
		if !ok {
			continue
		}
		if score := Cosine(vec, lv); score > tagScoreThreshold {
			candidates = append(candidates, scored{name: name, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	out := make([]string, 0, maxSuggestedTags)
	for _, c := range candidates {
		out = append(out, c.name)
		if len(out) == maxSuggestedTags {
			break
		}
	}
	return out
}
