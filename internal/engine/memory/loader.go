package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/utafrali/ecommerce-query/internal/domain"
)

// Load adds docs to the index, replacing records with the same ID. Records
// without an ID are assigned a random UUID. The batch is applied atomically
// with respect to concurrent searches.
func (e *Engine) Load(ctx context.Context, docs []domain.ECommerce) error {
	if len(docs) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	batch := e.index.NewBatch()
	staged := make(map[string]domain.ECommerce, len(docs))
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("memory load: %w", err)
		}
		doc := docs[i]
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("memory load: index %s: %w", doc.ID, err)
		}
		staged[doc.ID] = doc
	}

	if err := e.index.Batch(batch); err != nil {
		return fmt.Errorf("memory load: apply batch: %w", err)
	}
	for id, doc := range staged {
		e.records[id] = doc
	}

	e.logger.Info("loaded records into memory engine", slog.Int("count", len(staged)), slog.Int("total", len(e.records)))
	return nil
}

// LoadFile reads records from path and loads them. The file may hold a JSON
// array of records or newline-delimited JSON objects.
func (e *Engine) LoadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("memory load file: %w", err)
	}
	defer func() { _ = f.Close() }()

	docs, err := DecodeRecords(f)
	if err != nil {
		return fmt.Errorf("memory load file %s: %w", path, err)
	}
	return e.Load(ctx, docs)
}

// DecodeRecords parses a JSON array of records or a stream of JSON objects.
func DecodeRecords(r io.Reader) ([]domain.ECommerce, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var docs []domain.ECommerce
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return docs, nil
	}

	var docs []domain.ECommerce
	for line := 1; ; line++ {
		var doc domain.ECommerce
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
