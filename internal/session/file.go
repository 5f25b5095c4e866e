package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore — по файлу на ключ: <dir>/<session id>/<key>.json.
// Просроченные файлы (по mtime) считаются отсутствующими.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("session dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s *FileStore) path(sessionID, key string) string {
	return filepath.Join(s.dir, sessionID, key+".json")
}

func (s *FileStore) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	p := s.path(sessionID, key)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 && s.now().Sub(info.ModTime()) > s.ttl {
		_ = os.Remove(p)
		return nil, nil
	}
	return os.ReadFile(p)
}

// Save пишет через временный файл, чтобы не оставить полузаписанный снимок.
func (s *FileStore) Save(ctx context.Context, sessionID, key string, value []byte) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	dir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(sessionID, key))
}

func (s *FileStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(sessionID, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
