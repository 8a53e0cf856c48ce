package catalog

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/catalog/application"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/modules/catalog/infrastructure/persistence/postgres"
	catalogHttp "github.com/ltaportal/procurement/internal/modules/catalog/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"go.uber.org/zap"
)

// Module represents the Catalog module
type Module struct {
	products *postgres.PgProductRepository
	service  *application.CatalogService
	handler  *catalogHttp.CatalogHandler
}

func NewModule(db *sqlx.DB, images application.ImageStore, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Module {
	products := postgres.NewPgProductRepository(db)
	vendors := postgres.NewPgVendorRepository(db)
	service := application.NewCatalogService(products, vendors, images, c, cacheTTL, logger)

	return &Module{
		products: products,
		service:  service,
		handler:  catalogHttp.NewCatalogHandler(service, logger),
	}
}

// ProductFinder gives other modules (LTA, price offers) read access to products.
func (m *Module) ProductFinder() domain.ProductFinder {
	return m.products
}

func (m *Module) Service() *application.CatalogService {
	return m.service
}

func (m *Module) HTTPHandler() *catalogHttp.CatalogHandler {
	return m.handler
}
