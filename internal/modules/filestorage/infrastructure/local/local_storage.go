package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps files under basePath and serves them from baseURL.
// It is meant for development; URLs are not signed.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath is the directory the gateway serves at the uploads route.
func (l *LocalStorage) BasePath() string {
	return l.basePath
}

func (l *LocalStorage) path(key string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return full, nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return l.url(key), nil
}

func (l *LocalStorage) url(key string) string {
	return l.baseURL + "/" + key
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

func (l *LocalStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return l.url(key), nil
}

func (l *LocalStorage) PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	return l.url(key), nil
}

func (l *LocalStorage) KeyFromURL(u string) (string, error) {
	if key, ok := strings.CutPrefix(u, l.baseURL+"/"); ok && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("url does not match expected format: %s", u)
}
