package filestorage

import (
	"context"
	"fmt"

	"github.com/ltaportal/procurement/internal/modules/filestorage/application"
	"github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/modules/filestorage/infrastructure/local"
	"github.com/ltaportal/procurement/internal/modules/filestorage/infrastructure/s3"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/config"
	"go.uber.org/zap"
)

type Module struct {
	service  *application.FileService
	storage  domain.Storage
	localDir string
}

// NewModule picks S3 when configured and the local filesystem otherwise.
func NewModule(ctx context.Context, cfg config.FileStorageConfig, logger *zap.Logger) (*Module, error) {
	m := &Module{}

	if cfg.UseS3 {
		storage, err := s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		m.storage = storage
	} else {
		storage, err := local.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		m.storage = storage
		m.localDir = storage.BasePath()
	}

	m.service = application.NewFileService(m.storage, logger)
	return m, nil
}

func (m *Module) Service() *application.FileService {
	return m.service
}

// LocalDir is the directory to serve at /uploads/, or "" when files live in S3.
func (m *Module) LocalDir() string {
	return m.localDir
}
