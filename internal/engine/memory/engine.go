package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/utafrali/ecommerce-query/internal/domain"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("memory engine: closed")

// Engine is an in-memory implementation of engine.QueryEngine backed by a
// bleve index. It serves local development and tests without a cluster.
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu      sync.RWMutex
	index   bleve.Index
	records map[string]domain.ECommerce
	closed  bool
	logger  *slog.Logger
}

// New creates an empty in-memory engine.
func New(logger *slog.Logger) (*Engine, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, fmt.Errorf("memory engine: %w", err)
	}

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("memory engine: create index: %w", err)
	}

	return &Engine{
		index:   idx,
		records: make(map[string]domain.ECommerce),
		logger:  logger,
	}, nil
}

// Search executes q against the in-memory index.
func (e *Engine) Search(ctx context.Context, q *domain.Query) (*domain.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrClosed
	}

	analyzer := e.index.Mapping().AnalyzerNamed(standard.Name)
	req := bleve.NewSearchRequestOptions(translate(q, analyzer), q.Size, q.From, false)
	req.SortBy(sortOrder(q))

	res, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}

	records := make([]domain.ECommerce, 0, len(res.Hits))
	for _, hit := range res.Hits {
		rec, ok := e.records[hit.ID]
		if !ok {
			continue
		}
		rec.ID = hit.ID
		records = append(records, rec)
	}

	return &domain.Result{
		Records: records,
		Total:   int(res.Total),
		TookMs:  res.Took.Milliseconds(),
	}, nil
}

// Ping reports whether the engine is open.
func (e *Engine) Ping(context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// Count returns the number of loaded records.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// Close releases the index. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.records = nil
	return e.index.Close()
}
