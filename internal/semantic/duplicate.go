package semantic

import (
	"context"

	"github.com/xxxsen/promptdeck/internal/model"
)

const duplicateThreshold = 0.92

// FindDuplicate scans prompts in order and returns the first one whose
// similarity to the candidate text strictly exceeds the duplicate threshold,
// short-circuiting the rest. It fails open: an unavailable runtime or a
// failed embed never blocks saving. Vectors computed here stay in memory;
// persisting them is the rehydrator's job.
func (e *Engine) FindDuplicate(ctx context.Context, text string, prompts []model.Prompt) (*model.Prompt, bool) {
	if !e.ready.Load() {
		return nil, false
	}
	cv := e.Embed(ctx, text)
	if len(cv) == 0 {
		return nil, false
	}
	for i := range prompts {
		p := prompts[i]
		vec := p.Embedding
		if len(vec) == 0 {
			if cached, ok := e.cached(p.ID); ok {
				vec = cached
			} else {
				vec = e.EmbedPrompt(ctx, p)
				e.Prime(p.ID, vec)
			}
		}
		if Cosine(cv, vec) > duplicateThreshold {
			match := p.Clone()
			return &match, true
		}
	}
	return nil, false
}
