package feedback

import (
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/feedback/application"
	"github.com/ltaportal/procurement/internal/modules/feedback/infrastructure/persistence/postgres"
	feedback_http "github.com/ltaportal/procurement/internal/modules/feedback/interfaces/http"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"go.uber.org/zap"
)

type Module struct {
	handler *feedback_http.FeedbackHandler
}

func NewModule(db *sqlx.DB, orders application.Orders, notifier application.Notifier, publisher events.Publisher, logger *zap.Logger) *Module {
	service := application.NewFeedbackService(
		postgres.NewPgFeedbackRepository(db),
		postgres.NewPgIssueRepository(db),
		orders,
		notifier,
		publisher,
		logger,
	)
	return &Module{handler: feedback_http.NewFeedbackHandler(service, logger)}
}

func (m *Module) HTTPHandler() *feedback_http.FeedbackHandler {
	return m.handler
}
