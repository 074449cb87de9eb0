// Package reports computes dashboard and profitability figures with an in-memory DuckDB.
// Each report loads the ledger into temporary tables on its own connection, so reports
// for different accounts can run at the same time.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/satheeshds/orderledger/ledger"
	"github.com/shopspring/decimal"
)

// Reporter runs reports. It is safe for concurrent use.
type Reporter struct {
	db *sql.DB
}

// New opens an in-memory DuckDB database.
func New() (*Reporter, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging duckdb: %w", err)
	}
	return &Reporter{db: db}, nil
}

func (r *Reporter) Close() error { return r.db.Close() }

var schema = []string{
	`CREATE OR REPLACE TEMP TABLE orders (
		id VARCHAR PRIMARY KEY,
		customer_id VARCHAR,
		customer_name VARCHAR NOT NULL,
		date DATE,
		total DECIMAL(18,4) NOT NULL,
		amount_paid DECIMAL(18,4) NOT NULL,
		status VARCHAR NOT NULL
	)`,
	`CREATE OR REPLACE TEMP TABLE items (
		order_id VARCHAR NOT NULL,
		product_id VARCHAR NOT NULL,
		product_name VARCHAR NOT NULL,
		quantity INTEGER NOT NULL,
		price DECIMAL(18,4) NOT NULL
	)`,
}

// UnknownName labels sales whose customer or product no longer exists.
const UnknownName = "Unknown"

// withLedger loads l into temp tables on a dedicated connection and runs fn on it.
func (r *Reporter) withLedger(ctx context.Context, l ledger.Ledger, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring duckdb connection: %w", err)
	}
	defer conn.Close()
	defer func() {
		for _, t := range []string{"items", "orders"} {
			if _, err := conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS temp."+t); err != nil {
				slog.Warn("failed to drop report table", "table", t, "error", err)
			}
		}
	}()

	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating report tables: %w", err)
		}
	}
	if err := load(ctx, conn, l); err != nil {
		return err
	}
	return fn(conn)
}

func load(ctx context.Context, conn *sql.Conn, l ledger.Ledger) error {
	customers := l.CustomersByID()
	products := l.ProductsByID()

	insOrder, err := conn.PrepareContext(ctx, `INSERT INTO orders VALUES
		(?, ?, ?, CAST(? AS DATE), CAST(? AS DECIMAL(18,4)), CAST(? AS DECIMAL(18,4)), ?)`)
	if err != nil {
		return fmt.Errorf("preparing order insert: %w", err)
	}
	defer insOrder.Close()
	insItem, err := conn.PrepareContext(ctx, `INSERT INTO items VALUES
		(?, ?, ?, ?, CAST(? AS DECIMAL(18,4)))`)
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer insItem.Close()

	for _, o := range l.Orders {
		name := UnknownName
		if c, ok := customers[o.CustomerID]; ok {
			name = c.Name
		}
		var date any
		if !o.Date.IsZero() {
			date = o.Date.String()
		}
		if _, err := insOrder.ExecContext(ctx, o.ID, o.CustomerID, name, date,
			o.Total.String(), o.AmountPaid.String(), string(o.Status)); err != nil {
			return fmt.Errorf("loading order %s: %w", o.ID, err)
		}
		for _, it := range o.Items {
			pname := UnknownName
			if p, ok := products[it.ProductID]; ok {
				pname = p.Description
			}
			if _, err := insItem.ExecContext(ctx, o.ID, it.ProductID, pname, it.Quantity, it.Price.String()); err != nil {
				return fmt.Errorf("loading items of order %s: %w", o.ID, err)
			}
		}
	}
	return nil
}

// dec parses a DECIMAL that was cast to VARCHAR in the query.
func dec(s sql.NullString) decimal.Decimal {
	if !s.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}
