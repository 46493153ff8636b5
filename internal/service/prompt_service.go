package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/promptdeck/internal/model"
	appErr "github.com/xxxsen/promptdeck/internal/pkg/errors"
	"github.com/xxxsen/promptdeck/internal/semantic"
	"github.com/xxxsen/promptdeck/internal/store"
)

const promptsKey = "prompts"

// PromptService owns the prompt collection in the key-value store and wires
// it to the semantic engine. The whole collection lives under one key and is
// always written in a single Set.
type PromptService struct {
	store       store.Store
	engine      *semantic.Engine
	rehydrating atomic.Bool
}

func NewPromptService(st store.Store, engine *semantic.Engine) *PromptService {
	return &PromptService{store: st, engine: engine}
}

func (s *PromptService) List(ctx context.Context) ([]model.Prompt, error) {
	values, err := s.store.Get(ctx, promptsKey)
	if err != nil {
		return nil, err
	}
	raw := values[promptsKey]
	if raw == "" {
		return nil, nil
	}
	var prompts []model.Prompt
	if err := json.Unmarshal([]byte(raw), &prompts); err != nil {
		return nil, fmt.Errorf("decode prompt collection: %w", err)
	}
	return prompts, nil
}

func (s *PromptService) Get(ctx context.Context, id string) (*model.Prompt, error) {
	prompts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range prompts {
		if prompts[i].ID == id {
			p := prompts[i].Clone()
			return &p, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *PromptService) save(ctx context.Context, prompts []model.Prompt) error {
	data, err := json.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("encode prompt collection: %w", err)
	}
	return s.store.Set(ctx, map[string]string{promptsKey: string(data)})
}

func (s *PromptService) Create(ctx context.Context, title, text string, tags []string) (*model.Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrInvalid
	}
	prompts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	p := model.Prompt{
		ID:    uuid.NewString(),
		Title: strings.TrimSpace(title),
		Text:  text,
		Tags:  tags,
		Ctime: now,
		Mtime: now,
	}
	if s.engine.IsAvailable() {
		p.Embedding = s.engine.EmbedPrompt(ctx, p)
		s.engine.Prime(p.ID, p.Embedding)
	}
	prompts = append(prompts, p)
	if err := s.save(ctx, prompts); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PromptService) Update(ctx context.Context, id, title, text string, tags []string) (*model.Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrInvalid
	}
	prompts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	for i := range prompts {
		if prompts[i].ID != id {
			continue
		}
		updated := prompts[i].Clone()
		contentChanged := updated.Title != title || updated.Text != text
		updated.Title = title
		updated.Text = text
		updated.Tags = tags
		updated.Mtime = time.Now().Unix()
		if contentChanged {
			// The stored vector no longer describes this text.
			updated.Embedding = nil
			s.engine.Forget(id)
			if s.engine.IsAvailable() {
				updated.Embedding = s.engine.EmbedPrompt(ctx, updated)
				s.engine.Prime(id, updated.Embedding)
			}
		}
		next := make([]model.Prompt, len(prompts))
		copy(next, prompts)
		next[i] = updated
		if err := s.save(ctx, next); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, appErr.ErrNotFound
}

func (s *PromptService) Delete(ctx context.Context, id string) error {
	prompts, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := make([]model.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if p.ID == id {
			continue
		}
		next = append(next, p)
	}
	if len(next) == len(prompts) {
		return appErr.ErrNotFound
	}
	s.engine.Forget(id)
	return s.save(ctx, next)
}

func (s *PromptService) Search(ctx context.Context, query string) ([]semantic.Match, error) {
	prompts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Search(ctx, query, prompts), nil
}

func (s *PromptService) SuggestTags(ctx context.Context, text string) []string {
	return s.engine.SuggestTags(ctx, text)
}

func (s *PromptService) CheckDuplicate(ctx context.Context, text string) (*model.Prompt, bool, error) {
	prompts, err := s.List(ctx)
	if err != nil {
		return nil, false, err
	}
	match, dup := s.engine.FindDuplicate(ctx, text, prompts)
	return match, dup, nil
}

// Rehydrate backfills embeddings for prompts persisted before the runtime was
// ready. A call that arrives while a previous run is still going returns
// false immediately. Records are replaced copy-on-write and the whole updated
// collection is persisted in one write; any failure is logged and reported as
// "no change".
func (s *PromptService) Rehydrate(ctx context.Context) bool {
	if !s.rehydrating.CompareAndSwap(false, true) {
		logutil.GetLogger(ctx).Debug("rehydration already running, skipped")
		return false
	}
	defer s.rehydrating.Store(false)

	logger := logutil.GetLogger(ctx)
	if !s.engine.IsAvailable() {
		return false
	}
	prompts, err := s.List(ctx)
	if err != nil {
		logger.Warn("rehydration read failed", zap.Error(err))
		return false
	}
	next := make([]model.Prompt, len(prompts))
	copy(next, prompts)
	changed := false
	for i := range next {
		if len(next[i].Embedding) > 0 {
			continue
		}
		vec := s.engine.EmbedPrompt(ctx, next[i])
		if len(vec) == 0 {
			continue
		}
		updated := next[i].Clone()
		updated.Embedding = vec
		next[i] = updated
		s.engine.Prime(updated.ID, vec)
		changed = true
	}
	if !changed {
		return false
	}
	if err := s.save(ctx, next); err != nil {
		logger.Warn("rehydration write failed", zap.Error(err))
		return false
	}
	logger.Info("rehydration persisted", zap.Int("prompts", len(next)))
	return true
}

// RehydrateAsync runs Rehydrate in the background. The returned channel
// carries the outcome; callers may await it or ignore it.
func (s *PromptService) RehydrateAsync(ctx context.Context) <-chan bool {
	done := make(chan bool, 1)
	go func() {
		done <- s.Rehydrate(ctx)
		close(done)
	}()
	return done
}
