package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/satheeshds/orderledger/models"
)

// SQLStore keeps documents in the documents table created by db.Migrate.
type SQLStore struct {
	db       *sql.DB
	postgres bool

	mu   sync.Mutex
	last int64
}

// NewSQLStore returns a store over db. driver is the database/sql driver name the
// connection was opened with.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, postgres: driver == "pgx" || driver == "postgres"}
}

// stamp returns a strictly increasing nanosecond clock so creation order is stable.
func (s *SQLStore) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) List(ctx context.Context, account string, kind models.Kind, filters ...Filter) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, body FROM documents
		WHERE account_id = ? AND kind = ? ORDER BY created_ns, id`), account, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		if !matchAll([]byte(body), filters) {
			continue
		}
		docs = append(docs, Document{ID: id, Body: []byte(body)})
	}
	return docs, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, account string, kind models.Kind, id string) (Document, error) {
	return s.get(ctx, s.db, account, kind, id)
}

func (s *SQLStore) get(ctx context.Context, q querier, account string, kind models.Kind, id string) (Document, error) {
	var body string
	err := q.QueryRowContext(ctx, s.rebind(`SELECT body FROM documents WHERE account_id = ? AND kind = ? AND id = ?`),
		account, string(kind), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("getting %s %s: %w", kind, id, err)
	}
	return Document{ID: id, Body: []byte(body)}, nil
}

func (s *SQLStore) Insert(ctx context.Context, account string, kind models.Kind, doc any) (string, error) {
	return s.insert(ctx, s.db, account, kind, doc)
}

func (s *SQLStore) insert(ctx context.Context, q querier, account string, kind models.Kind, doc any) (string, error) {
	body, err := encode(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := s.stamp()
	_, err = q.ExecContext(ctx, s.rebind(`INSERT INTO documents (account_id, kind, id, body, created_ns, updated_ns)
		VALUES (?, ?, ?, ?, ?, ?)`), account, string(kind), id, string(body), now, now)
	if err != nil {
		return "", fmt.Errorf("inserting %s: %w", kind, err)
	}
	return id, nil
}

func (s *SQLStore) Put(ctx context.Context, account string, kind models.Kind, id string, doc any) error {
	return s.put(ctx, s.db, account, kind, id, doc)
}

func (s *SQLStore) put(ctx context.Context, q querier, account string, kind models.Kind, id string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	now := s.stamp()
	_, err = q.ExecContext(ctx, s.rebind(`INSERT INTO documents (account_id, kind, id, body, created_ns, updated_ns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, kind, id) DO UPDATE SET body = excluded.body, updated_ns = excluded.updated_ns`),
		account, string(kind), id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, account string, kind models.Kind, id string, patch map[string]any) error {
	return s.Batch(ctx, account, func(b Batch) error {
		return b.Update(kind, id, patch)
	})
}

func (s *SQLStore) update(ctx context.Context, q querier, account string, kind models.Kind, id string, patch map[string]any) error {
	doc, err := s.get(ctx, q, account, kind, id)
	if err != nil {
		return err
	}
	body, err := merge(doc.Body, patch)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, s.rebind(`UPDATE documents SET body = ?, updated_ns = ?
		WHERE account_id = ? AND kind = ? AND id = ?`), string(body), s.stamp(), account, string(kind), id)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, account string, kind models.Kind, id string) error {
	return s.delete(ctx, s.db, account, kind, id)
}

func (s *SQLStore) delete(ctx context.Context, q querier, account string, kind models.Kind, id string) error {
	res, err := q.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE account_id = ? AND kind = ? AND id = ?`),
		account, string(kind), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Batch(ctx context.Context, account string, fn func(Batch) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting batch: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlBatch{s: s, ctx: ctx, tx: tx, account: account}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

type sqlBatch struct {
	s       *SQLStore
	ctx     context.Context
	tx      *sql.Tx
	account string
}

func (b *sqlBatch) Insert(kind models.Kind, doc any) (string, error) {
	return b.s.insert(b.ctx, b.tx, b.account, kind, doc)
}

func (b *sqlBatch) Put(kind models.Kind, id string, doc any) error {
	return b.s.put(b.ctx, b.tx, b.account, kind, id, doc)
}

func (b *sqlBatch) Update(kind models.Kind, id string, patch map[string]any) error {
	return b.s.update(b.ctx, b.tx, b.account, kind, id, patch)
}

func (b *sqlBatch) Delete(kind models.Kind, id string) error {
	return b.s.delete(b.ctx, b.tx, b.account, kind, id)
}
