package semantic

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xxxsen/promptdeck/internal/inference"
	"github.com/xxxsen/promptdeck/internal/model"
)

const (
	StateLoading     = "loading"
	StateReady       = "ready"
	StateUnavailable = "unavailable"
)

// SettingsSource supplies the optional user search context prepended to text
// before tag suggestion. Implementations read persisted settings best-effort
// and return "" on any failure.
type SettingsSource interface {
	SearchContext(ctx context.Context) string
}

// ProviderFactory builds the inference capability on demand. It runs at most
// once per EnsureReady attempt; the engine owns whatever it returns.
type ProviderFactory func(ctx context.Context) (inference.Provider, error)

type prober interface {
	Probe(ctx context.Context) error
}

// Engine is the process-wide semantic context: the lazily loaded runtime, the
// label cache and the per-id embedding cache. Every feature degrades to a
// safe default while the runtime is unavailable.
type Engine struct {
	factory  ProviderFactory
	vocab    []string
	settings SettingsSource

	loads   singleflight.Group
	loading atomic.Int32
	ready   atomic.Bool

	mu       sync.RWMutex
	provider inference.Provider
	labels   map[string][]float32

	byID *lru.Cache[string, []float32]
}

func NewEngine(factory ProviderFactory, vocab []string, settings SettingsSource, cacheSize int) *Engine {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &Engine{
		factory:  factory,
		vocab:    vocab,
		settings: settings,
		byID:     cache,
	}
}

// EnsureReady performs the lazy runtime load. Concurrent callers share one
// in-flight load; once it settles the slot is cleared, so a failed load is
// retried only by the next explicit call, never automatically.
func (e *Engine) EnsureReady(ctx context.Context) bool {
	if e.ready.Load() {
		return true
	}
	_, err, _ := e.loads.Do("load", func() (interface{}, error) {
		e.loading.Add(1)
		defer e.loading.Add(-1)
		provider, err := e.factory(ctx)
		if err == nil && provider == nil {
			err = inference.ErrUnavailable
		}
		if err == nil {
			if p, ok := provider.(prober); ok {
				err = p.Probe(ctx)
			}
		}
		if err != nil {
			e.mu.Lock()
			e.provider = nil
			e.labels = nil
			e.mu.Unlock()
			e.ready.Store(false)
			logutil.GetLogger(ctx).Warn("inference runtime load failed", zap.Error(err))
			return nil, err
		}
		e.mu.Lock()
		e.provider = provider
		e.mu.Unlock()
		e.ready.Store(true)
		logutil.GetLogger(ctx).Info("inference runtime ready", zap.String("provider", provider.Name()))
		e.warmLabels(ctx)
		return nil, nil
	})
	return err == nil && e.ready.Load()
}

func (e *Engine) IsAvailable() bool {
	return e.ready.Load()
}

// State reports the lifecycle phase for the UI indicator.
func (e *Engine) State() string {
	if e.ready.Load() {
		return StateReady
	}
	if e.loading.Load() > 0 {
		return StateLoading
	}
	return StateUnavailable
}

// Reset drops the loaded runtime and every cache. The next EnsureReady
// performs a fresh load and recomputes the label cache.
func (e *Engine) Reset() {
	e.ready.Store(false)
	e.mu.Lock()
	e.provider = nil
	e.labels = nil
	e.mu.Unlock()
	e.byID.Purge()
}

// Embed turns text into one unit-length vector, or nil when the text is
// blank, the runtime is unavailable, inference fails, or the output shape is
// malformed. It never returns an error value: callers treat nil uniformly as
// "could not embed, fall back".
func (e *Engine) Embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !e.ready.Load() {
		return nil
	}
	e.mu.RLock()
	provider := e.provider
	e.mu.RUnlock()
	if provider == nil {
		return nil
	}
	res, err := provider.Infer(ctx, text)
	if err != nil {
		logutil.GetLogger(ctx).Warn("inference failed", zap.Error(err))
		return nil
	}
	vec, err := pool(res)
	if err != nil {
		logutil.GetLogger(ctx).Warn("malformed inference output", zap.Error(err))
		return nil
	}
	return normalize(vec)
}

// EmbedPrompt embeds a prompt's title and text together, matching how stored
// vectors are computed everywhere else.
func (e *Engine) EmbedPrompt(ctx context.Context, p model.Prompt) []float32 {
	return e.Embed(ctx, promptText(p))
}

func promptText(p model.Prompt) string {
	return strings.TrimSpace(p.Title + "\n" + p.Text)
}

// Prime records a known prompt vector in the per-id cache.
func (e *Engine) Prime(id string, vec []float32) {
	if id == "" || len(vec) == 0 {
		return
	}
	e.byID.Add(id, vec)
}

// Forget evicts a prompt's cached vector. Must be called when a prompt is
// deleted or its text edited, so a reused id cannot surface a stale match.
func (e *Engine) Forget(id string) {
	if id == "" {
		return
	}
	e.byID.Remove(id)
}

func (e *Engine) cached(id string) ([]float32, bool) {
	if id == "" {
		return nil, false
	}
	return e.byID.Get(id)
}
