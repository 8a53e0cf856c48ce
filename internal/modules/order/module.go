package order

import (
	"github.com/jmoiron/sqlx"
	catalogDomain "github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/modules/order/application"
	"github.com/ltaportal/procurement/internal/modules/order/infrastructure/persistence/postgres"
	order_http "github.com/ltaportal/procurement/internal/modules/order/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the order module borrows from other modules.
type Dependencies struct {
	Pricer    application.ContractPricer
	Products  catalogDomain.ProductFinder
	Clients   application.ClientDirectory
	Notifier  application.Notifier
	Publisher events.Publisher
}

type Module struct {
	service *application.OrderService
	handler *order_http.OrderHandler
}

func NewModule(db *sqlx.DB, deps Dependencies, logger *zap.Logger) *Module {
	service := application.NewOrderService(
		postgres.NewPgOrderRepository(db),
		postgres.NewPgModificationRepository(db),
		database.NewTxManager(db),
		deps.Pricer,
		deps.Products,
		deps.Clients,
		deps.Notifier,
		deps.Publisher,
		logger,
	)
	return &Module{
		service: service,
		handler: order_http.NewOrderHandler(service, logger),
	}
}

func (m *Module) Service() *application.OrderService {
	return m.service
}

func (m *Module) HTTPHandler() *order_http.OrderHandler {
	return m.handler
}
