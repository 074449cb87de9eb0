package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns a database connection and the database/sql driver name it uses.
// SQLite (the default) is opened at path with WAL mode enabled; postgres connects to dsn
// through pgx.
func Open(driver, path, dsn string) (*sql.DB, string, error) {
	switch driver {
	case "", DriverSQLite:
		db, err := openSQLite(path)
		return db, "sqlite", err
	case DriverPostgres:
		db, err := openPostgres(dsn)
		return db, "pgx", err
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func openSQLite(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = "./data/ledger.db"
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Info("database connected", "driver", DriverSQLite, "path", dbPath)
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for postgres")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Info("database connected", "driver", DriverPostgres)
	return db, nil
}
