package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StaticResolver — модели лежат как статика по базовому URL (CDN или /static).
type StaticResolver struct {
	BaseURL string
}

func (s StaticResolver) ResolveURL(_ context.Context, key string) (string, error) {
	base := strings.TrimRight(s.BaseURL, "/")
	return base + "/" + strings.TrimLeft(key, "/"), nil
}

// DirUploader пишет объекты в каталог статики; ключ — относительный путь.
type DirUploader struct {
	Dir string
}

func (u DirUploader) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	clean := filepath.Clean("/" + key)
	dst := filepath.Join(u.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
