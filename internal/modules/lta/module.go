package lta

import (
	"time"

	"github.com/jmoiron/sqlx"
	catalogDomain "github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/modules/lta/application"
	"github.com/ltaportal/procurement/internal/modules/lta/infrastructure/persistence/postgres"
	lta_http "github.com/ltaportal/procurement/internal/modules/lta/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"go.uber.org/zap"
)

type Module struct {
	service *application.LtaService
	handler *lta_http.LtaHandler
}

func NewModule(db *sqlx.DB, products catalogDomain.ProductFinder, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Module {
	repo := postgres.NewPgLtaRepository(db)
	service := application.NewLtaService(repo, products, c, cacheTTL, logger)
	return &Module{
		service: service,
		handler: lta_http.NewLtaHandler(service, logger),
	}
}

// Service is shared with the order and price offer modules.
func (m *Module) Service() *application.LtaService {
	return m.service
}

func (m *Module) HTTPHandler() *lta_http.LtaHandler {
	return m.handler
}
