// Package store persists ledger documents. Documents are JSON bodies grouped by account
// and kind, one collection per kind for every account.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/satheeshds/orderledger/models"
	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when a document id does not exist in the collection.
var ErrNotFound = errors.New("document not found")

// Document is a stored record. Body never carries the id.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Filter selects documents whose JSON body has Value at Path (gjson syntax).
type Filter struct {
	Path  string
	Value any
}

// Where returns a filter on a body path.
func Where(path string, value any) Filter {
	return Filter{Path: path, Value: value}
}

func (f Filter) match(body []byte) bool {
	res := gjson.GetBytes(body, f.Path)
	if !res.Exists() {
		return false
	}
	return res.String() == fmt.Sprint(f.Value)
}

func matchAll(body []byte, filters []Filter) bool {
	for _, f := range filters {
		if !f.match(body) {
			return false
		}
	}
	return true
}

// Store is a document store scoped by account. Implementations are safe for concurrent use.
type Store interface {
	List(ctx context.Context, account string, kind models.Kind, filters ...Filter) ([]Document, error)
	Get(ctx context.Context, account string, kind models.Kind, id string) (Document, error)
	// Insert stores doc under a new id and returns it.
	Insert(ctx context.Context, account string, kind models.Kind, doc any) (string, error)
	// Put creates or replaces the document with the given id.
	Put(ctx context.Context, account string, kind models.Kind, id string, doc any) error
	// Update merges the top-level fields of patch into an existing document.
	Update(ctx context.Context, account string, kind models.Kind, id string, patch map[string]any) error
	Delete(ctx context.Context, account string, kind models.Kind, id string) error
	// Batch runs fn and applies its writes all-or-nothing.
	Batch(ctx context.Context, account string, fn func(Batch) error) error
}

// Batch collects writes applied together by Store.Batch.
type Batch interface {
	Insert(kind models.Kind, doc any) (string, error)
	Put(kind models.Kind, id string, doc any) error
	Update(kind models.Kind, id string, patch map[string]any) error
	Delete(kind models.Kind, id string) error
}

// encode marshals doc and drops its "id" field.
func encode(doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	delete(fields, "id")
	return json.Marshal(fields)
}

// merge applies patch on top of body.
func merge(body []byte, patch map[string]any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decoding stored document: %w", err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", k, err)
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

// withID returns the body with the document id added back.
func (d Document) withID() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(d.Body, &fields); err != nil {
		return nil, err
	}
	id, _ := json.Marshal(d.ID)
	fields["id"] = id
	return json.Marshal(fields)
}

// Decode unmarshals the document, id included, into a T.
func Decode[T any](d Document) (T, error) {
	var v T
	raw, err := d.withID()
	if err != nil {
		return v, fmt.Errorf("document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("document %s: %w", d.ID, err)
	}
	return v, nil
}
