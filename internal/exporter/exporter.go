package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// ItemExporter is the write side of an export job. Open receives the schemas
// of every item type the job will emit. Export must be safe for concurrent
// use. Close must be valid after an Open without any Export call.
type ItemExporter interface {
	Open(ctx context.Context, schemas ...*common.Schema) error
	Export(ctx context.Context, item common.Item) error
	Close(ctx context.Context) error
}

// CompositeExporter routes items to one exporter per item type. Several item
// types may share the same exporter.
type CompositeExporter struct {
	exporters map[common.ItemType]ItemExporter
	opened    []ItemExporter
}

func NewCompositeExporter(exporters map[common.ItemType]ItemExporter) *CompositeExporter {
	return &CompositeExporter{exporters: exporters}
}

func (c *CompositeExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	bySink := make(map[ItemExporter][]*common.Schema)
	var order []ItemExporter
	for _, schema := range schemas {
		sink, ok := c.exporters[schema.Name]
		if !ok {
			return fmt.Errorf("no exporter configured for item type %s", schema.Name)
		}
		if _, seen := bySink[sink]; !seen {
			order = append(order, sink)
		}
		bySink[sink] = append(bySink[sink], schema)
	}
	for _, sink := range order {
		if err := sink.Open(ctx, bySink[sink]...); err != nil {
			closeErr := c.Close(ctx)
			return errors.Join(err, closeErr)
		}
		c.opened = append(c.opened, sink)
	}
	return nil
}

func (c *CompositeExporter) Export(ctx context.Context, item common.Item) error {
	sink, ok := c.exporters[item.Type()]
	if !ok {
		return fmt.Errorf("no exporter configured for item type %s", item.Type())
	}
	return sink.Export(ctx, item)
}

func (c *CompositeExporter) Close(ctx context.Context) error {
	var errs []error
	for _, sink := range c.opened {
		if err := sink.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.opened = nil
	return errors.Join(errs...)
}

// findSchema returns the schema of itemType among schemas.
func findSchema(itemType common.ItemType, schemas []*common.Schema) (*common.Schema, error) {
	for _, schema := range schemas {
		if schema.Name == itemType {
			return schema, nil
		}
	}
	return nil, fmt.Errorf("no schema for item type %s", itemType)
}

func checkItemType(expected *common.Schema, item common.Item) error {
	if expected == nil {
		return fmt.Errorf("exporter is not open")
	}
	if item.Schema != expected {
		return fmt.Errorf("unexpected item type %s, exporter writes %s", item.Type(), expected.Name)
	}
	return nil
}
