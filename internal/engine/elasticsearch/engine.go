package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/ecommerce-query/internal/domain"
	apperrors "github.com/utafrali/ecommerce-query/pkg/errors"
	"github.com/utafrali/ecommerce-query/pkg/httpclient"
)

// DefaultIndexName is the index of the Kibana sample e-commerce dataset.
const DefaultIndexName = "kibana_sample_data_ecommerce"

// Config configures the Elasticsearch engine.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string

	// CircuitBreaker guards the HTTP transport when non-nil.
	CircuitBreaker *httpclient.CircuitBreakerConfig

	// Tracing enables the client's OpenTelemetry instrumentation, which
	// emits one span per request through the global tracer provider.
	Tracing bool

	// Transport overrides the base HTTP transport; mainly for tests.
	Transport http.RoundTripper
}

// Engine is an Elasticsearch-backed implementation of engine.QueryEngine.
// It only reads: the index and its mapping are managed outside this service.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse is the structure used to decode Elasticsearch search responses.
type esSearchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string           `json:"_id"`
			Source domain.ECommerce `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an Elasticsearch engine. It does not contact the cluster; use
// Ping to check reachability.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndexName
	}

	var transport http.RoundTripper = cfg.Transport
	if cfg.CircuitBreaker != nil {
		transport = httpclient.NewBreakerTransport(transport, *cfg.CircuitBreaker, logger)
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
		// No retries: failures feed the circuit breaker instead.
		DisableRetry: true,
	}
	if cfg.Tracing {
		esCfg.Instrumentation = elasticsearch.NewOpenTelemetryInstrumentation(nil, false)
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	return &Engine{
		client:    client,
		indexName: cfg.Index,
		logger:    logger,
	}, nil
}

// Index returns the name of the index queries run against.
func (e *Engine) Index() string {
	return e.indexName
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return wrapTransportError("elasticsearch ping", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// Search executes q against the configured index.
func (e *Engine) Search(ctx context.Context, q *domain.Query) (*domain.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}

	data, err := json.Marshal(BuildRequest(q))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	e.logger.DebugContext(ctx, "elasticsearch search",
		slog.String("index", e.indexName),
		slog.String("kind", string(q.Kind)),
		slog.String("body", string(data)),
	)

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, wrapTransportError("elasticsearch search", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, decodeError("elasticsearch search", res.StatusCode, res.Status(), res.Body)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	records := make([]domain.ECommerce, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		rec := hit.Source
		rec.ID = hit.ID
		records = append(records, rec)
	}

	return &domain.Result{
		Records: records,
		Total:   esResp.Hits.Total.Value,
		TookMs:  esResp.Took,
	}, nil
}

func wrapTransportError(op string, err error) error {
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return fmt.Errorf("%s: %w", op, apperrors.ServiceUnavailable("elasticsearch", err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// decodeError turns an error response into "type: reason". 503 and 429 are
// reported as the cluster being unavailable.
func decodeError(op string, code int, status string, body io.Reader) error {
	var err error
	var errResp esErrorResponse
	if decErr := json.NewDecoder(body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		err = fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	} else {
		err = fmt.Errorf("%s: unexpected status %s", op, status)
	}

	if code == http.StatusServiceUnavailable || code == http.StatusTooManyRequests {
		return apperrors.ServiceUnavailable("elasticsearch", err)
	}
	return err
}
