package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bom-gen/config"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// sqlDriverNames maps source drivers to database/sql driver names.
var sqlDriverNames = map[config.SourceDriver]string{
	config.DriverMySQL:    "mysql",
	config.DriverPostgres: "postgres",
	config.DriverSQLite:   "sqlite",
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// OpenSource builds the RecordFetcher for src. location is the source file for
// xlsx/csv and overrides the DSN for SQL drivers and the table for DynamoDB.
// The returned closer releases any connection the fetcher holds.
func OpenSource(ctx context.Context, src config.SourceConfig, location string) (RecordFetcher, io.Closer, error) {
	switch src.Driver {
	case config.DriverXlsx, "":
		if location == "" {
			return nil, nil, fmt.Errorf("xlsx source requires a file path")
		}
		return NewXlsxRecordFetcher(location, src.Sheet, src.HeaderRow), noopCloser, nil

	case config.DriverCsv:
		if location == "" {
			return nil, nil, fmt.Errorf("csv source requires a file path")
		}
		return NewCsvRecordFetcher(location, src.Encoding), noopCloser, nil

	case config.DriverMySQL, config.DriverPostgres, config.DriverSQLite:
		dsn := src.DSN
		if location != "" {
			dsn = location
		}
		if dsn == "" {
			return nil, nil, fmt.Errorf("%s source requires a DSN", src.Driver)
		}
		db, err := sqlx.Open(sqlDriverNames[src.Driver], dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		slog.Debug("Database connected", "driver", src.Driver)
		return NewSQLRecordFetcher(db, src.Table, src.Query), db, nil

	case config.DriverDynamoDB:
		table := src.Table
		if location != "" {
			table = location
		}
		if table == "" {
			return nil, nil, fmt.Errorf("dynamodb source requires a table")
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		return NewDynamoDBRecordFetcher(cfg, table), noopCloser, nil

	default:
		return nil, nil, fmt.Errorf("unsupported source driver: %s", src.Driver)
	}
}

// LoadSource opens src, loads it and indexes it, closing the source afterwards.
func LoadSource(ctx context.Context, src config.SourceConfig, location string) (*StyleIndex, error) {
	fetcher, closer, err := OpenSource(ctx, src, location)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return LoadStyleIndex(ctx, fetcher, src.Columns)
}
