package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/satheeshds/orderledger/models"
)

type memDoc struct {
	body []byte
	seq  int64
}

type collection map[string]memDoc

// MemoryStore is an in-process Store, used by tests and when no database is configured.
type MemoryStore struct {
	mu   sync.Mutex
	seq  int64
	data map[string]map[models.Kind]collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[models.Kind]collection{}}
}

func (m *MemoryStore) List(_ context.Context, account string, kind models.Kind, filters ...Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.data[account][kind]
	ids := slices.SortedFunc(maps.Keys(coll), func(a, b string) int {
		return int(coll[a].seq - coll[b].seq)
	})
	docs := []Document{}
	for _, id := range ids {
		d := coll[id]
		if !matchAll(d.body, filters) {
			continue
		}
		docs = append(docs, Document{ID: id, Body: slices.Clone(d.body)})
	}
	return docs, nil
}

func (m *MemoryStore) Get(_ context.Context, account string, kind models.Kind, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.data[account][kind][id]
	if !ok {
		return Document{}, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return Document{ID: id, Body: slices.Clone(d.body)}, nil
}

func (m *MemoryStore) Insert(ctx context.Context, account string, kind models.Kind, doc any) (string, error) {
	var id string
	err := m.Batch(ctx, account, func(b Batch) error {
		var err error
		id, err = b.Insert(kind, doc)
		return err
	})
	return id, err
}

func (m *MemoryStore) Put(ctx context.Context, account string, kind models.Kind, id string, doc any) error {
	return m.Batch(ctx, account, func(b Batch) error { return b.Put(kind, id, doc) })
}

func (m *MemoryStore) Update(ctx context.Context, account string, kind models.Kind, id string, patch map[string]any) error {
	return m.Batch(ctx, account, func(b Batch) error { return b.Update(kind, id, patch) })
}

func (m *MemoryStore) Delete(ctx context.Context, account string, kind models.Kind, id string) error {
	return m.Batch(ctx, account, func(b Batch) error { return b.Delete(kind, id) })
}

// Batch works on a copy of the account's collections and swaps it in only when fn succeeds.
func (m *MemoryStore) Batch(ctx context.Context, account string, fn func(Batch) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := map[models.Kind]collection{}
	for kind, coll := range m.data[account] {
		work[kind] = maps.Clone(coll)
	}
	b := &memBatch{work: work, seq: m.seq}
	if err := fn(b); err != nil {
		return err
	}
	m.data[account] = work
	m.seq = b.seq
	return nil
}

type memBatch struct {
	work map[models.Kind]collection
	seq  int64
}

func (b *memBatch) coll(kind models.Kind) collection {
	c, ok := b.work[kind]
	if !ok {
		c = collection{}
		b.work[kind] = c
	}
	return c
}

func (b *memBatch) Insert(kind models.Kind, doc any) (string, error) {
	id := uuid.NewString()
	return id, b.Put(kind, id, doc)
}

func (b *memBatch) Put(kind models.Kind, id string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	c := b.coll(kind)
	seq := c[id].seq
	if _, exists := c[id]; !exists {
		b.seq++
		seq = b.seq
	}
	c[id] = memDoc{body: body, seq: seq}
	return nil
}

func (b *memBatch) Update(kind models.Kind, id string, patch map[string]any) error {
	c := b.coll(kind)
	d, ok := c[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	body, err := merge(d.body, patch)
	if err != nil {
		return err
	}
	c[id] = memDoc{body: body, seq: d.seq}
	return nil
}

func (b *memBatch) Delete(kind models.Kind, id string) error {
	c := b.coll(kind)
	if _, ok := c[id]; !ok {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	delete(c, id)
	return nil
}
