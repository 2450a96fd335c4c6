package exporter

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

const defaultTableBatchSize = 1000

// rowInserter writes a batch of rows into a table.
type rowInserter interface {
	Insert(ctx context.Context, table string, columns []string, rows [][]interface{}) error
	Close() error
}

// tableExporter buffers items per type and inserts them in batches into
// tables named after the item type (blocks, transactions, receipts, logs).
// The connection is made on the first Open.
type tableExporter struct {
	backend   string
	batchSize int
	connect   func(ctx context.Context) (rowInserter, error)
	toRow     func(common.Item) []interface{}
	inserter  rowInserter

	mu      sync.Mutex
	schemas map[common.ItemType]*common.Schema
	buffers map[common.ItemType][][]interface{}
}

func (e *tableExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inserter == nil {
		inserter, err := e.connect(ctx)
		if err != nil {
			return err
		}
		e.inserter = inserter
	}
	e.schemas = make(map[common.ItemType]*common.Schema, len(schemas))
	e.buffers = make(map[common.ItemType][][]interface{}, len(schemas))
	for _, schema := range schemas {
		e.schemas[schema.Name] = schema
	}
	return nil
}

func (e *tableExporter) Export(ctx context.Context, item common.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	schema, ok := e.schemas[item.Type()]
	if !ok || schema != item.Schema {
		return fmt.Errorf("unexpected item type %s", item.Type())
	}
	e.buffers[item.Type()] = append(e.buffers[item.Type()], e.toRow(item))
	if len(e.buffers[item.Type()]) >= e.size() {
		return e.flush(ctx, item.Type())
	}
	return nil
}

func (e *tableExporter) size() int {
	if e.batchSize < 1 {
		return defaultTableBatchSize
	}
	return e.batchSize
}

func (e *tableExporter) flush(ctx context.Context, itemType common.ItemType) error {
	rows := e.buffers[itemType]
	if len(rows) == 0 {
		return nil
	}
	e.buffers[itemType] = nil
	table := TableName(itemType)
	if err := e.inserter.Insert(ctx, table, e.schemas[itemType].FieldNames(), rows); err != nil {
		return fmt.Errorf("failed to insert %d rows into %s: %w", len(rows), table, err)
	}
	log.Debug().Str("table", table).Int("rows", len(rows)).Msgf("Inserted batch into %s", e.backend)
	return nil
}

func (e *tableExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inserter == nil {
		return nil
	}
	var flushErr error
	for itemType := range e.schemas {
		if err := e.flush(ctx, itemType); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	closeErr := e.inserter.Close()
	e.inserter = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func TableName(itemType common.ItemType) string {
	return string(itemType) + "s"
}
