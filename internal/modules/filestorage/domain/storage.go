package domain

import (
	"context"
	"errors"
	"io"
	"time"
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Storage is a blob store addressed by key. S3/MinIO in production,
// the local filesystem in development.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	KeyFromURL(url string) (string, error)
}

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrFileTooLarge           = errors.New("file too large")
	ErrEmptyFile              = errors.New("empty file")
	ErrInvalidImage           = errors.New("invalid image")
)
