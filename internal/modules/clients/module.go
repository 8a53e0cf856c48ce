package clients

import (
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/clients/domain"
	"github.com/ltaportal/procurement/internal/modules/clients/infrastructure/persistence/postgres"
	clients_http "github.com/ltaportal/procurement/internal/modules/clients/interfaces/http"
	"go.uber.org/zap"
)

// Module exposes read access to the clients table. Accounts themselves are
// managed by the identity provider.
type Module struct {
	repo    *postgres.PgClientRepository
	handler *clients_http.ClientHandler
}

func NewModule(db *sqlx.DB, logger *zap.Logger) *Module {
	repo := postgres.NewPgClientRepository(db)
	return &Module{
		repo:    repo,
		handler: clients_http.NewClientHandler(repo, logger),
	}
}

// Directory is used by other modules for lookups and admin fan-out.
func (m *Module) Directory() domain.ClientRepository {
	return m.repo
}

func (m *Module) HTTPHandler() *clients_http.ClientHandler {
	return m.handler
}
