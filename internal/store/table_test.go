package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterDoc struct {
	Count int            `json:"count"`
	Tags  map[string]int `json:"tags"`
}

func newCounterTable(t *testing.T) (*Table[counterDoc], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "counter.json")
	return NewTable(NewFileBlob(path), func() counterDoc {
		return counterDoc{Tags: map[string]int{}}
	}), path
}

func TestTable_LoadMissingReturnsEmpty(t *testing.T) {
	table, _ := newCounterTable(t)

	doc, err := table.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Count)
	assert.NotNil(t, doc.Tags)
}

func TestTable_UpdatePersists(t *testing.T) {
	table, path := newCounterTable(t)
	ctx := context.Background()

	require.NoError(t, table.Update(ctx, func(d *counterDoc) error {
		d.Count = 7
		d.Tags["a"] = 1
		return nil
	}))

	reopened := NewTable(NewFileBlob(path), func() counterDoc { return counterDoc{} })
	doc, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Count)
	assert.Equal(t, map[string]int{"a": 1}, doc.Tags)
}

func TestTable_UpdateErrorWritesNothing(t *testing.T) {
	table, path := newCounterTable(t)
	boom := errors.New("boom")

	err := table.Update(context.Background(), func(d *counterDoc) error {
		d.Count = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTable_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	table, _ := newCounterTable(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, table.Update(ctx, func(d *counterDoc) error {
				d.Count++
				return nil
			}))
		}()
	}
	wg.Wait()

	doc, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, doc.Count)
}

func TestTable_CorruptDocument(t *testing.T) {
	table, path := newCounterTable(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := table.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	err = table.Update(ctx, func(d *counterDoc) error { return nil })
	assert.ErrorIs(t, err, ErrCorrupt)

	table.ResetOnCorrupt()
	require.NoError(t, table.Update(ctx, func(d *counterDoc) error {
		d.Count = 3
		return nil
	}))
	doc, err := table.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Count)
}
