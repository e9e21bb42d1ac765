package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("latte.JPG", "products")

	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// Same filename must not collide.
	assert.NotEqual(t, key, NewObjectKey("latte.JPG", "products"))
}

func TestNewObjectKey_NoExtension(t *testing.T) {
	key := NewObjectKey("README", "uploads")

	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.False(t, strings.Contains(filepath.Base(key), "."))
}

func TestValidateContentType(t *testing.T) {
	allowed := []string{"image/jpeg", "image/png", "image/webp"}

	assert.NoError(t, ValidateContentType("image/png", allowed))
	assert.Error(t, ValidateContentType("application/pdf", allowed))
	assert.Error(t, ValidateContentType("", allowed))
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(1024, 5*1024*1024))
	assert.NoError(t, ValidateFileSize(5*1024*1024, 5*1024*1024))
	assert.Error(t, ValidateFileSize(5*1024*1024+1, 5*1024*1024))
}

func TestLocalStorage_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "products/beans.png", "image/png", strings.NewReader("fake image bytes"))
	require.NoError(t, err)

	// The trailing slash on the base URL must not double up.
	assert.Equal(t, "http://localhost:8080/uploads/products/beans.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "products", "beans.png"))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestLocalStorage_CreatesNestedFolders(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "events/2026/poster.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "events", "2026", "poster.jpg"))
	assert.NoError(t, err)
}
