package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// JSONExporter writes newline delimited JSON objects. Keys keep the schema
// order and are preceded by the item type. Several item types may share one
// file.
type JSONExporter struct {
	path string

	mu      sync.Mutex
	schemas map[common.ItemType]*common.Schema
	out     *output
}

func NewJSONExporter(path string) *JSONExporter {
	return &JSONExporter{path: path}
}

func (e *JSONExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, err := openOutput(e.path)
	if err != nil {
		return err
	}
	e.out = out
	e.schemas = make(map[common.ItemType]*common.Schema, len(schemas))
	for _, schema := range schemas {
		e.schemas[schema.Name] = schema
	}
	return nil
}

func (e *JSONExporter) Export(ctx context.Context, item common.Item) error {
	line, err := MarshalItemJSON(item)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return fmt.Errorf("exporter is not open")
	}
	if e.schemas[item.Type()] != item.Schema {
		return fmt.Errorf("unexpected item type %s", item.Type())
	}
	_, err = e.out.Write(line)
	return err
}

func (e *JSONExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	return err
}

// MarshalItemJSON encodes an item as a JSON object with a leading "type" key
// followed by the schema fields in order.
func MarshalItemJSON(item common.Item) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	typeJSON, err := json.Marshal(string(item.Type()))
	if err != nil {
		return nil, err
	}
	buf.Write(typeJSON)
	for i, field := range item.Schema.Fields {
		buf.WriteByte(',')
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(item.Values[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", field.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
