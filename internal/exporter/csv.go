package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// CSVExporter writes one item type as CSV with a header row. List values are
// joined with commas.
type CSVExporter struct {
	path     string
	itemType common.ItemType

	mu     sync.Mutex
	schema *common.Schema
	out    *output
	writer *csv.Writer
}

func NewCSVExporter(path string, itemType common.ItemType) *CSVExporter {
	return &CSVExporter{path: path, itemType: itemType}
}

func (e *CSVExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	schema, err := findSchema(e.itemType, schemas)
	if err != nil {
		return err
	}
	out, err := openOutput(e.path)
	if err != nil {
		return err
	}
	e.schema = schema
	e.out = out
	e.writer = csv.NewWriter(out)
	return e.writer.Write(schema.FieldNames())
}

func (e *CSVExporter) Export(ctx context.Context, item common.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkItemType(e.schema, item); err != nil {
		return err
	}
	record := make([]string, len(item.Values))
	for i, value := range item.Values {
		record[i] = formatCSVValue(value)
	}
	return e.writer.Write(record)
}

func (e *CSVExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	e.writer.Flush()
	writeErr := e.writer.Error()
	closeErr := e.out.Close()
	e.out = nil
	if writeErr != nil {
		return fmt.Errorf("failed to write csv %s: %w", e.path, writeErr)
	}
	return closeErr
}

func formatCSVValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
