package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage 上传图片的存储后端，返回可直接写入 Post.Image 的访问路径
type Storage interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// ObjectKey 以 uuid 命名对象，保留原始扩展名
func ObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "posts/" + uuid.NewString() + ext
}

// LocalStorage 本地磁盘存储，经 /media/ 静态路由访问
type LocalStorage struct {
	Dir       string
	URLPrefix string
}

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: urlPrefix}
}

func (s *LocalStorage) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	key := ObjectKey(filename)
	path := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.URLPrefix + key, nil
}
