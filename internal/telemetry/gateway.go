// Package telemetry adapts the external safety-score provider. The provider
// is known to be flaky: calls are bounded by a timeout and wrapped in a
// retry policy, and any terminal failure produces a degraded empty result
// rather than an error. A missing external signal must never block risk
// computation.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	telmetrics "convoy/internal/telemetry/metrics"
	"convoy/pkg/platform/retry"
)

const defaultTimeout = 9 * time.Second

var tracer = otel.Tracer("convoy/telemetry")

// Gateway fetches per-driver safety scores over HTTP.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	policy  retry.Policy
	cache   *Cache
	logger  *slog.Logger
	metrics *telmetrics.Metrics
}

type Option func(*Gateway)

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(g *Gateway) {
		g.policy = p
	}
}

func WithCache(c *Cache) Option {
	return func(g *Gateway) {
		g.cache = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(m *telmetrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func New(baseURL, apiKey string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// scoresResponse mirrors the provider's wire format.
type scoresResponse struct {
	Scores []DriverScore `json:"scores"`
}

// GetScores fetches safety scores for the date window. Network errors,
// timeouts, and non-2xx responses all yield a degraded empty result; the
// error never propagates to callers.
func (g *Gateway) GetScores(ctx context.Context, start, end time.Time) Result {
	ctx, span := tracer.Start(ctx, "telemetry.GetScores")
	defer span.End()

	if scores, ok := g.cache.Get(ctx, start, end); ok {
		g.metrics.IncrementResult("cache_hit")
		return Result{Scores: scores}
	}

	begin := time.Now()
	scores, err := retry.Do1(ctx, g.policy, func(ctx context.Context) ([]DriverScore, error) {
		return g.fetch(ctx, start, end)
	})
	g.metrics.ObserveFetch(time.Since(begin))

	if err != nil {
		span.SetAttributes(attribute.Bool("telemetry.degraded", true))
		g.metrics.IncrementResult("degraded")
		if g.logger != nil {
			g.logger.WarnContext(ctx, "telemetry provider unavailable, proceeding degraded",
				"window_start", start.Format("2006-01-02"),
				"window_end", end.Format("2006-01-02"),
				"error", err,
			)
		}
		return Result{Degraded: true}
	}

	g.metrics.IncrementResult("ok")
	g.cache.Put(ctx, start, end, scores)
	return Result{Scores: scores}
}

func (g *Gateway) fetch(ctx context.Context, start, end time.Time) ([]DriverScore, error) {
	endpoint, err := url.JoinPath(g.baseURL, "scores")
	if err != nil {
		return nil, fmt.Errorf("build scores url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build scores request: %w", err)
	}
	q := req.URL.Query()
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	req.URL.RawQuery = q.Encode()
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var body scoresResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode scores response: %w", err)
	}
	return body.Scores, nil
}
