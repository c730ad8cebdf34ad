package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStoragePath(t *testing.T) {
	id := uuid.MustParse("3f2a1c4e-0000-4000-8000-000000000001")

	assert.Equal(t, "photos/3f/"+id.String()+".png", generateStoragePath(id, "My Photo.PNG"))
	assert.Equal(t, "photos/3f/"+id.String(), generateStoragePath(id, "noext"))
	assert.NotContains(t, generateStoragePath(id, "../../etc/passwd.jpg"), "..")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("a.JPG"))
	assert.Equal(t, "image/webp", ContentType("a.webp"))
	assert.Equal(t, "application/octet-stream", ContentType("a.pdf"))
	assert.True(t, IsImage("face.jpeg"))
	assert.False(t, IsImage("notes.txt"))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	path, err := store.Upload(ctx, id, "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	rc, err := store.Download(ctx, path)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete(ctx, path))
	require.NoError(t, store.Delete(ctx, path))

	_, err = store.Download(ctx, path)
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	_, err = store.Download(ctx, "../outside.png")
	assert.Error(t, err)
}

func TestNewStorage(t *testing.T) {
	_, err := NewStorage(context.Background(), StorageConfig{Type: "ftp"})
	assert.Error(t, err)

	_, err = NewStorage(context.Background(), StorageConfig{Type: StorageTypeS3})
	assert.Error(t, err)
}
