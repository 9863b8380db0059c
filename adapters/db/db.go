// Package db opens the optional dataset catalog database and implements the
// catalog repository on top of sqlx.
package db

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"solardash/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ParseURL picks the driver for a DATABASE_URL and returns the DSN it expects.
// postgres:// and postgresql:// go to lib/pq; sqlite:<path>, file:<path> and
// *.db paths go to modernc sqlite.
func ParseURL(url string) (driver, dsn string, err error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", errors.ConfigInvalid("DATABASE_URL is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "sqlite:"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite:"), nil
	case strings.HasPrefix(url, "file:"), strings.HasSuffix(url, ".db"), strings.HasSuffix(url, ".sqlite"):
		return DriverSQLite, url, nil
	default:
		return "", "", errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_URL scheme in %q", url))
	}
}

// Open connects to the catalog database and verifies the connection
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("connect %s: %w", driver, err))
	}
	if driver == DriverSQLite {
		// a single connection keeps :memory: databases shared across queries
		conn.SetMaxOpenConns(1)
	}

	log.Printf("[DB] Connected to %s catalog in %.2fms", driver, float64(time.Since(start).Nanoseconds())/1e6)
	return conn, nil
}
