package exporter

import (
	"context"
	"sync"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// InMemoryExporter collects items in memory, for tests and small ranges.
type InMemoryExporter struct {
	mu      sync.Mutex
	items   []common.Item
	schemas []*common.Schema
	opened  int
	closed  int
}

func NewInMemoryExporter() *InMemoryExporter {
	return &InMemoryExporter{}
}

func (e *InMemoryExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened++
	e.schemas = schemas
	return nil
}

func (e *InMemoryExporter) Export(ctx context.Context, item common.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append(e.items, item)
	return nil
}

func (e *InMemoryExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return nil
}

// Items returns the exported items in export order.
func (e *InMemoryExporter) Items() []common.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]common.Item(nil), e.items...)
}

// ItemsOfType returns the exported items of one type in export order.
func (e *InMemoryExporter) ItemsOfType(itemType common.ItemType) []common.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	var items []common.Item
	for _, item := range e.items {
		if item.Type() == itemType {
			items = append(items, item)
		}
	}
	return items
}

func (e *InMemoryExporter) Schemas() []*common.Schema {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schemas
}

// Opened and Closed report how many times Open and Close were called.
func (e *InMemoryExporter) Opened() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

func (e *InMemoryExporter) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
