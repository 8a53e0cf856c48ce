package priceoffer

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewModule(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	m := NewModule(sqlx.NewDb(sqlDB, "sqlmock"), Dependencies{Publisher: events.NopPublisher{}, TaxRate: 0.15}, zap.NewNop())
	assert.NotNil(t, m.Service())
	assert.NotNil(t, m.HTTPHandler())
}
