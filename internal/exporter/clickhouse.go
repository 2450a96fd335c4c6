package exporter

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type ClickHouseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	EnableTLS bool
	BatchSize int
}

// ClickHouseExporter inserts items in batches into ClickHouse tables.
type ClickHouseExporter struct {
	tableExporter
	cfg ClickHouseConfig
}

func NewClickHouseExporter(cfg ClickHouseConfig) *ClickHouseExporter {
	e := &ClickHouseExporter{cfg: cfg}
	e.tableExporter = tableExporter{
		backend:   "ClickHouse",
		batchSize: cfg.BatchSize,
		connect:   e.connect,
		toRow:     clickhouseRow,
	}
	return e
}

func (e *ClickHouseExporter) connect(ctx context.Context) (rowInserter, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)},
		Protocol: clickhouse.Native,
		TLS: func() *tls.Config {
			if e.cfg.EnableTLS {
				return &tls.Config{}
			}
			return nil
		}(),
		Auth: clickhouse.Auth{
			Username: e.cfg.Username,
			Password: e.cfg.Password,
			Database: e.cfg.Database,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &clickhouseInserter{conn: conn, database: e.cfg.Database}, nil
}

func InsertQuery(database, table string, columns []string) string {
	if database == "" {
		return fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(columns, ", "))
	}
	return fmt.Sprintf("INSERT INTO %s.%s (%s)", database, table, strings.Join(columns, ", "))
}

// clickhouseRow converts item values to driver values. Lists map to
// Array(String), which is never null.
func clickhouseRow(item common.Item) []interface{} {
	row := make([]interface{}, len(item.Values))
	for i, value := range item.Values {
		if item.Schema.Fields[i].Type == common.FieldTypeStringList {
			list, _ := value.([]string)
			if list == nil {
				list = []string{}
			}
			row[i] = list
			continue
		}
		row[i] = value
	}
	return row
}

type clickhouseInserter struct {
	conn     driver.Conn
	database string
}

func (c *clickhouseInserter) Insert(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	batch, err := c.conn.PrepareBatch(ctx, InsertQuery(c.database, table, columns))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			batch.Abort()
			return err
		}
	}
	return batch.Send()
}

func (c *clickhouseInserter) Close() error {
	return c.conn.Close()
}
