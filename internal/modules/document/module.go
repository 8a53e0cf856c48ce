package document

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/document/application"
	"github.com/ltaportal/procurement/internal/modules/document/infrastructure/persistence/postgres"
	document_http "github.com/ltaportal/procurement/internal/modules/document/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"go.uber.org/zap"
)

type Module struct {
	service *application.DocumentService
	handler *document_http.DocumentHandler
}

// NewModule wires document storage. Download tokens live in tokens, which
// must be shared by every server instance.
func NewModule(db *sqlx.DB, files application.Files, offers application.OfferLinker, tokens cache.Cache, tokenTTL time.Duration, baseURL string, logger *zap.Logger) *Module {
	service := application.NewDocumentService(
		postgres.NewPgDocumentRepository(db),
		files,
		offers,
		tokens,
		tokenTTL,
		baseURL,
		logger,
	)
	return &Module{
		service: service,
		handler: document_http.NewDocumentHandler(service, logger),
	}
}

func (m *Module) Service() *application.DocumentService {
	return m.service
}

func (m *Module) HTTPHandler() *document_http.DocumentHandler {
	return m.handler
}
