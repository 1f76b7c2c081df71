package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// HTTPProviderConfig configures the embedding model client
type HTTPProviderConfig struct {
	Endpoint string
	Model    string
	Timeout  time.Duration

	// Circuit breaker
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // how long to stay open before probing
	HalfOpenRequests uint32
}

// HTTPProvider calls a sentence-embedding model server over HTTP.
// Requests go through a circuit breaker so a struggling model server fails
// fast instead of eating every screening's semantic budget.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	model    string
	breaker  *gobreaker.CircuitBreaker
	log      *logger.Logger
}

type embedRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

// embedResponse accepts both {"embeddings": [[...]]} and {"data": [{"embedding": [...]}]}
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Data       []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewHTTPProvider creates an HTTP embedding provider
func NewHTTPProvider(cfg HTTPProviderConfig, log *logger.Logger) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	l := log.Named("embedding_provider")
	p := &HTTPProvider{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		log:      l,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding-provider",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state changed",
				logger.StringField("breaker", name),
				logger.StringField("from", from.String()),
				logger.StringField("to", to.String()),
			)
		},
	})
	return p
}

// Embed returns the embedding of text
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	res, err := p.breaker.Execute(func() (interface{}, error) {
		return p.request(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return res.([]float64), nil
}

// BreakerState reports the circuit breaker state
func (p *HTTPProvider) BreakerState() gobreaker.State {
	return p.breaker.State()
}

func (p *HTTPProvider) request(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Model: p.model, Input: []string{text}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding request: unexpected status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	switch {
	case len(out.Embeddings) > 0:
		return out.Embeddings[0], nil
	case len(out.Data) > 0:
		return out.Data[0].Embedding, nil
	default:
		return nil, errors.New("embedding response contained no vectors")
	}
}
