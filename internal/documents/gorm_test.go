//go:build cgo

package documents

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewGormStore(GormConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "documents.db"),
		AutoMigrate: true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStore_ListDocuments(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, fixtureDocs()...))

	docs, err := store.ListDocuments(ctx, "org1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(docs))
	require.NotNil(t, docs[1].MasteryLevel)
	assert.Equal(t, 3.0, *docs[1].MasteryLevel)
	assert.Nil(t, docs[0].MasteryLevel)

	docs, err = store.ListDocuments(ctx, "org1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(docs))
	assert.True(t, docs[1].Archived)
}

func TestGormStore_UnsupportedDriver(t *testing.T) {
	_, err := NewGormStore(GormConfig{Driver: "oracle"}, nil)
	assert.Error(t, err)
}
