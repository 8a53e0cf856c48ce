package application

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"go.uber.org/zap"
)

const (
	MaxDocumentSize = 20 << 20
	MaxImageSize    = 5 << 20
)

var (
	documentTypes = map[string]string{"application/pdf": ".pdf"}
	imageTypes    = map[string]string{"image/jpeg": ".jpg", "image/png": ".png"}
)

// FileService validates uploads and stores them under generated keys.
type FileService struct {
	storage domain.Storage
	logger  *zap.Logger
}

func NewFileService(storage domain.Storage, logger *zap.Logger) *FileService {
	return &FileService{storage: storage, logger: logger}
}

// detectType sniffs the content and falls back to the declared type.
func detectType(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if sniffed == "application/octet-stream" && declared != "" {
		return declared
	}
	return sniffed
}

func (s *FileService) put(ctx context.Context, key, contentType string, data []byte) (domain.Object, error) {
	url, err := s.storage.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return domain.Object{}, err
	}
	return domain.Object{Key: key, URL: url, ContentType: contentType, Size: int64(len(data))}, nil
}

// UploadDocument stores a generated PDF under folder.
func (s *FileService) UploadDocument(ctx context.Context, folder, declaredType string, data []byte) (domain.Object, error) {
	if len(data) == 0 {
		return domain.Object{}, domain.ErrEmptyFile
	}
	if len(data) > MaxDocumentSize {
		return domain.Object{}, domain.ErrFileTooLarge
	}
	contentType := detectType(data, declaredType)
	ext, ok := documentTypes[contentType]
	if !ok {
		return domain.Object{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, contentType)
	}
	return s.put(ctx, fmt.Sprintf("%s/%s%s", folder, uuid.New(), ext), contentType, data)
}

// UploadImage stores the original image and a JPEG thumbnail next to it.
func (s *FileService) UploadImage(ctx context.Context, folder string, data []byte) (original, thumb domain.Object, err error) {
	if len(data) == 0 {
		return original, thumb, domain.ErrEmptyFile
	}
	if len(data) > MaxImageSize {
		return original, thumb, domain.ErrFileTooLarge
	}
	contentType := detectType(data, "")
	ext, ok := imageTypes[contentType]
	if !ok {
		return original, thumb, fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, contentType)
	}

	thumbData, err := Thumbnail(data, ThumbnailSize)
	if err != nil {
		return original, thumb, err
	}

	id := uuid.New()
	original, err = s.put(ctx, fmt.Sprintf("%s/%s%s", folder, id, ext), contentType, data)
	if err != nil {
		return original, thumb, err
	}
	thumb, err = s.put(ctx, fmt.Sprintf("%s/%s_thumb.jpg", folder, id), "image/jpeg", thumbData)
	if err != nil {
		s.DeleteQuietly(ctx, original.Key)
		return domain.Object{}, domain.Object{}, err
	}
	return original, thumb, nil
}

// DownloadURL returns a short-lived URL that downloads key as filename.
func (s *FileService) DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	if filename == "" {
		filename = filepath.Base(key)
	}
	return s.storage.PresignDownload(ctx, key, filename, ttl)
}

// ViewURL returns a short-lived URL for inline viewing.
func (s *FileService) ViewURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.storage.PresignGet(ctx, key, ttl)
}

func (s *FileService) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// DeleteQuietly removes key and only logs failures. Used for cleanup of
// objects whose database row is already gone.
func (s *FileService) DeleteQuietly(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

// DeleteByURL resolves a public URL back to its key and deletes it.
func (s *FileService) DeleteByURL(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, err := s.storage.KeyFromURL(url)
	if err != nil {
		s.logger.Warn("cannot resolve storage key", zap.String("url", url), zap.Error(err))
		return
	}
	s.DeleteQuietly(ctx, key)
}
