package exporter

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

var writerOptions = []parquet.WriterOption{
	parquet.Compression(&parquet.Zstd),
	parquet.DataPageStatistics(true),
	parquet.PageBufferSize(8 * 1024 * 1024), // 8MB pages
	parquet.ColumnIndexSizeLimit(16 * 1024), // 16KB limit for column index
}

// ParquetExporter writes one item type to a parquet file whose schema is
// derived from the item schema. Scalars are optional columns, lists are
// repeated string columns.
type ParquetExporter struct {
	path         string
	itemType     common.ItemType
	rowGroupSize int64

	mu      sync.Mutex
	schema  *common.Schema
	pschema *parquet.Schema
	columns []int
	file    *os.File
	writer  *parquet.Writer
}

func NewParquetExporter(path string, itemType common.ItemType, rowGroupSize int64) *ParquetExporter {
	return &ParquetExporter{path: path, itemType: itemType, rowGroupSize: rowGroupSize}
}

// ParquetSchema maps an item schema to a parquet schema.
func ParquetSchema(schema *common.Schema) *parquet.Schema {
	group := parquet.Group{}
	for _, field := range schema.Fields {
		switch field.Type {
		case common.FieldTypeInt64:
			group[field.Name] = parquet.Optional(parquet.Int(64))
		case common.FieldTypeStringList:
			group[field.Name] = parquet.Repeated(parquet.String())
		default:
			group[field.Name] = parquet.Optional(parquet.String())
		}
	}
	return parquet.NewSchema(string(schema.Name), group)
}

func (e *ParquetExporter) Open(ctx context.Context, schemas ...*common.Schema) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	schema, err := findSchema(e.itemType, schemas)
	if err != nil {
		return err
	}
	pschema := ParquetSchema(schema)
	// parquet groups order their fields by name, so keep the leaf index of every schema field
	columns := make([]int, len(schema.Fields))
	for i, field := range schema.Fields {
		leaf, ok := pschema.Lookup(field.Name)
		if !ok {
			return fmt.Errorf("parquet schema has no column %s", field.Name)
		}
		columns[i] = leaf.ColumnIndex
	}
	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", e.path, err)
	}
	options := append([]parquet.WriterOption{pschema}, writerOptions...)
	if e.rowGroupSize > 0 {
		options = append(options, parquet.MaxRowsPerRowGroup(e.rowGroupSize))
	}
	e.schema = schema
	e.pschema = pschema
	e.columns = columns
	e.file = file
	e.writer = parquet.NewWriter(file, options...)
	return nil
}

func (e *ParquetExporter) Export(ctx context.Context, item common.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkItemType(e.schema, item); err != nil {
		return err
	}
	row := e.row(item)
	if _, err := e.writer.WriteRows([]parquet.Row{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	return nil
}

func (e *ParquetExporter) row(item common.Item) parquet.Row {
	byColumn := make([][]parquet.Value, len(e.pschema.Columns()))
	for i, value := range item.Values {
		column := e.columns[i]
		switch v := value.(type) {
		case string:
			byColumn[column] = []parquet.Value{parquet.ByteArrayValue([]byte(v)).Level(0, 1, column)}
		case int64:
			byColumn[column] = []parquet.Value{parquet.Int64Value(v).Level(0, 1, column)}
		case []string:
			if len(v) == 0 {
				byColumn[column] = []parquet.Value{parquet.NullValue().Level(0, 0, column)}
				continue
			}
			values := make([]parquet.Value, len(v))
			for j, s := range v {
				repetition := 1
				if j == 0 {
					repetition = 0
				}
				values[j] = parquet.ByteArrayValue([]byte(s)).Level(repetition, 1, column)
			}
			byColumn[column] = values
		default:
			byColumn[column] = []parquet.Value{parquet.NullValue().Level(0, 0, column)}
		}
	}
	row := make(parquet.Row, 0, len(byColumn))
	for _, values := range byColumn {
		row = append(row, values...)
	}
	return row
}

func (e *ParquetExporter) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	writeErr := e.writer.Close()
	closeErr := e.file.Close()
	e.file = nil
	if writeErr != nil {
		return fmt.Errorf("failed to close parquet writer: %w", writeErr)
	}
	return closeErr
}
