package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/notification/application"
	"github.com/ltaportal/procurement/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/ltaportal/procurement/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/ltaportal/procurement/internal/modules/notification/interfaces/http"
	"go.uber.org/zap"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
}

func NewModule(db *sqlx.DB, admins application.AdminDirectory, logger *zap.Logger) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	hub := websocket.NewHub(logger)
	go hub.Run()

	service := application.NewNotificationService(repo, hub, admins, logger)
	handler := notification_http.NewNotificationHandler(service, hub, logger)

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
	}
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

// Shutdown closes every websocket connection.
func (m *Module) Shutdown() {
	m.hub.Stop()
}
