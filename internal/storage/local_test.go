package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveRetrieveDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	location, err := store.Save(ctx, strings.NewReader("hello world"), "documents/abc.txt", 11)
	require.NoError(t, err)
	assert.Equal(t, "documents/abc.txt", location)

	rc, err := store.Retrieve(ctx, location)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "hello world", string(data))

	found, err := store.Delete(ctx, location)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = store.Retrieve(ctx, location)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(ctx, strings.NewReader("first"), "documents/same.txt", 5)
	require.NoError(t, err)

	_, err = store.Save(ctx, strings.NewReader("second"), "documents/same.txt", 6)
	assert.Error(t, err)

	// The original content is untouched.
	rc, err := store.Retrieve(ctx, "documents/same.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "first", string(data))
}

func TestLocalStorage_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	found, err := store.Delete(ctx, "documents/never-existed.txt")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestLocalStorage_RejectsEscapingLocations(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(ctx, strings.NewReader("x"), "../outside.txt", 1)
	assert.Error(t, err)

	_, err = store.Retrieve(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
