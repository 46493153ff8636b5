package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ollamaConfig struct {
	Host    string `json:"host"`
	Model   string `json:"model"`
	Timeout int    `json:"timeout"`
}

type ollamaProvider struct {
	host   string
	model  string
	client *http.Client
}

func (p *ollamaProvider) Name() string {
	return "ollama"
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResponse tolerates the two raw shapes local runtimes emit:
// a flat buffer with explicit dims, or nested token-vector arrays.
type ollamaEmbedResponse struct {
	Data       []float32   `json:"data"`
	Dims       []int64     `json:"dims"`
	Embeddings interface{} `json:"embeddings"`
}

func (p *ollamaProvider) Infer(ctx context.Context, text string) (*Result, error) {
	if p.host == "" || p.model == "" {
		return nil, ErrUnavailable
	}
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runtime embed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("runtime embed: status %d", resp.StatusCode)
	}
	var decoded ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(decoded.Data) == 0 && decoded.Embeddings == nil {
		return nil, fmt.Errorf("runtime returned empty embeddings")
	}
	return &Result{
		Data:   decoded.Data,
		Dims:   decoded.Dims,
		Nested: decoded.Embeddings,
	}, nil
}

// Probe checks that the runtime answers on its tags endpoint. Used by the
// lifecycle load so availability reflects a reachable runtime, not just config.
func (p *ollamaProvider) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("runtime unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runtime probe: status %d", resp.StatusCode)
	}
	return nil
}

func createOllamaFactory(args interface{}) (Provider, error) {
	cfg := &ollamaConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	host := strings.TrimSuffix(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}
	return &ollamaProvider{
		host:  host,
		model: strings.TrimSpace(cfg.Model),
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}, nil
}

func init() {
	Register("ollama", createOllamaFactory)
}
