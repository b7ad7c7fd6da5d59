package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// ErrBlobNotFound is returned by a Blob that has never been written.
var ErrBlobNotFound = errors.New("blob not found")

// ErrCorrupt is returned when a stored document cannot be decoded.
var ErrCorrupt = errors.New("corrupt table")

// Duplicate key errors returned by CreateUser.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// Blob is a single opaque document that is always read and written whole.
type Blob interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Table is a JSON document of type T persisted in a Blob. Every mutation
// reads the full document, applies the change and writes it back. The
// mutex serializes that cycle within the process; separate processes
// sharing the same blob still race (last writer wins).
type Table[T any] struct {
	mu             sync.Mutex
	blob           Blob
	empty          func() T
	resetOnCorrupt bool
}

// NewTable returns a table over blob. empty builds the value used when the
// blob does not exist yet.
func NewTable[T any](blob Blob, empty func() T) *Table[T] {
	return &Table[T]{blob: blob, empty: empty}
}

// ResetOnCorrupt makes Update start from the empty value when the stored
// document cannot be decoded, instead of failing.
func (t *Table[T]) ResetOnCorrupt() *Table[T] {
	t.resetOnCorrupt = true
	return t
}

// Load returns the current document. A missing blob yields the empty value.
func (t *Table[T]) Load(ctx context.Context) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// Update runs fn against the current document and persists the result.
// Nothing is written if fn returns an error.
func (t *Table[T]) Update(ctx context.Context, fn func(*T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := t.load(ctx)
	if errors.Is(err, ErrCorrupt) && t.resetOnCorrupt {
		err = nil
	}
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	if err := t.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func (t *Table[T]) load(ctx context.Context) (T, error) {
	doc := t.empty()
	data, err := t.blob.Read(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read table: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return t.empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return doc, nil
}
