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

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// 两次生成的键不重复
	assert.NotEqual(t, key, ObjectKey("Photo.JPG"))

	assert.False(t, strings.Contains(ObjectKey("noext"), "."))
}

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "/media/")

	url, err := s.Save(context.Background(), "cat.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/posts/"))

	rel := strings.TrimPrefix(url, "/media/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}
