package priceoffer

import (
	"github.com/jmoiron/sqlx"
	catalogDomain "github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/application"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/infrastructure/persistence/postgres"
	offer_http "github.com/ltaportal/procurement/internal/modules/priceoffer/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"go.uber.org/zap"
)

type Dependencies struct {
	Agreements application.Agreements
	Products   catalogDomain.ProductFinder
	Notifier   application.Notifier
	Publisher  events.Publisher
	TaxRate    float64
}

type Module struct {
	service *application.PriceOfferService
	handler *offer_http.PriceOfferHandler
}

func NewModule(db *sqlx.DB, deps Dependencies, logger *zap.Logger) *Module {
	service := application.NewPriceOfferService(
		postgres.NewPgRequestRepository(db),
		postgres.NewPgOfferRepository(db),
		database.NewTxManager(db),
		deps.Agreements,
		deps.Products,
		deps.Notifier,
		deps.Publisher,
		application.Options{TaxRate: deps.TaxRate},
		logger,
	)
	return &Module{
		service: service,
		handler: offer_http.NewPriceOfferHandler(service, logger),
	}
}

// Service is shared with the document module, which attaches generated PDFs.
func (m *Module) Service() *application.PriceOfferService {
	return m.service
}

func (m *Module) HTTPHandler() *offer_http.PriceOfferHandler {
	return m.handler
}
