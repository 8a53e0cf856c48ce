package analytics

import (
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/analytics/application"
	"github.com/ltaportal/procurement/internal/modules/analytics/infrastructure/persistence/postgres"
	analytics_http "github.com/ltaportal/procurement/internal/modules/analytics/interfaces/http"
	"go.uber.org/zap"
)

// Module serves the admin procurement dashboard.
type Module struct {
	service application.AnalyticsService
	handler *analytics_http.AnalyticsHandler
}

func NewModule(db *sqlx.DB, logger *zap.Logger) *Module {
	service := application.NewAnalyticsService(postgres.NewPgAnalyticsRepository(db))
	return &Module{
		service: service,
		handler: analytics_http.NewAnalyticsHandler(service, logger),
	}
}

func (m *Module) Service() application.AnalyticsService {
	return m.service
}

func (m *Module) HTTPHandler() *analytics_http.AnalyticsHandler {
	return m.handler
}
