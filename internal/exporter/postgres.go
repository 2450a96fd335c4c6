package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// postgres accepts at most 65535 bind parameters per statement
const maxPostgresParams = 65535

type PostgresConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	SSLMode         string
	ConnectTimeout  int
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime int
	BatchSize       int
}

// PostgresExporter inserts items in batches into postgres tables.
type PostgresExporter struct {
	tableExporter
	cfg PostgresConfig
}

func NewPostgresExporter(cfg PostgresConfig) *PostgresExporter {
	e := &PostgresExporter{cfg: cfg}
	e.tableExporter = tableExporter{
		backend:   "Postgres",
		batchSize: cfg.BatchSize,
		connect:   e.connect,
		toRow:     postgresRow,
	}
	return e
}

// ConnString builds the lib/pq connection string. The ssl mode defaults to require.
func (c PostgresConfig) ConnString() string {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database)

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	connStr += fmt.Sprintf(" sslmode=%s", sslMode)

	if c.ConnectTimeout > 0 {
		connStr += fmt.Sprintf(" connect_timeout=%d", c.ConnectTimeout)
	}
	return connStr
}

func (e *PostgresExporter) connect(ctx context.Context) (rowInserter, error) {
	if e.cfg.SSLMode == "" {
		log.Info().Msg("No SSL mode specified, defaulting to 'require' for secure connection")
	}
	db, err := sql.Open("postgres", e.cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(e.cfg.MaxOpenConns)
	db.SetMaxIdleConns(e.cfg.MaxIdleConns)
	if e.cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(e.cfg.MaxConnLifetime) * time.Second)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &postgresInserter{db: db}, nil
}

// PostgresInsertQuery builds a multi-row insert with numbered placeholders.
func PostgresInsertQuery(table string, columns []string, rowCount int) string {
	valueStrings := make([]string, 0, rowCount)
	placeholders := make([]string, len(columns))
	for r := 0; r < rowCount; r++ {
		for c := range columns {
			placeholders[c] = fmt.Sprintf("$%d", r*len(columns)+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), strings.Join(valueStrings, ","))
}

// postgresRow converts lists to text[] values. Decimals stay strings and are
// cast by postgres into numeric columns.
func postgresRow(item common.Item) []interface{} {
	row := make([]interface{}, len(item.Values))
	for i, value := range item.Values {
		if item.Schema.Fields[i].Type == common.FieldTypeStringList {
			list, _ := value.([]string)
			if list == nil {
				list = []string{}
			}
			row[i] = pq.StringArray(list)
			continue
		}
		row[i] = value
	}
	return row
}

type postgresInserter struct {
	db *sql.DB
}

func (p *postgresInserter) Insert(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	perStatement := maxPostgresParams / len(columns)
	for start := 0; start < len(rows); start += perStatement {
		chunk := rows[start:min(start+perStatement, len(rows))]
		args := make([]interface{}, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		if _, err := p.db.ExecContext(ctx, PostgresInsertQuery(table, columns, len(chunk)), args...); err != nil {
			return err
		}
	}
	return nil
}

func (p *postgresInserter) Close() error {
	return p.db.Close()
}
