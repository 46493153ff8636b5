package job

import (
	"context"

	"github.com/xxxsen/promptdeck/internal/service"
)

// RehydrateJob periodically backfills embeddings for prompts that were saved
// while the runtime was down. The service's own busy flag makes overlapping
// runs harmless.
type RehydrateJob struct {
	prompts *service.PromptService
}

func NewRehydrateJob(prompts *service.PromptService) *RehydrateJob {
	return &RehydrateJob{prompts: prompts}
}

func (j *RehydrateJob) Name() string {
	return "embedding_rehydrate"
}

func (j *RehydrateJob) Run(ctx context.Context) error {
	if j.prompts == nil {
		return nil
	}
	j.prompts.Rehydrate(ctx)
	return nil
}
