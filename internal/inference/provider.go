package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("inference runtime unavailable")

// Result is the raw model output for one piece of text. Runtimes report it
// either as a flat buffer with explicit dimensions or as nested arrays of
// token vectors; callers are expected to handle both.
type Result struct {
	Data   []float32
	Dims   []int64
	Nested interface{}
}

// Provider is the opaque inference capability injected into the semantic
// engine. Failure is signaled by the returned error, never by a panic.
type Provider interface {
	Name() string
	Infer(ctx context.Context, text string) (*Result, error)
}

type ProviderFactory func(args interface{}) (Provider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("runtime.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported inference provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("inference provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode inference provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode inference provider config: %w", err)
	}
	return nil
}
