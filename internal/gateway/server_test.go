package gateway

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	server := NewServer("8080", mux, zap.NewNop())

	assert.NotNil(t, server)
	assert.Equal(t, "8080", server.port)
	assert.Equal(t, ":8080", server.httpServer.Addr)
	assert.NotNil(t, server.httpServer.Handler)
}

func TestServer_Timeouts(t *testing.T) {
	server := NewServer("8080", http.NewServeMux(), zap.NewNop())

	assert.Equal(t, 5*time.Second, server.httpServer.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, server.httpServer.ReadTimeout)
	assert.Equal(t, 15*time.Second, server.httpServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, server.httpServer.IdleTimeout)
}

func TestServer_ShutdownRunsHooksInOrder(t *testing.T) {
	server := NewServer("0", http.NewServeMux(), zap.NewNop())

	var calls []string
	server.OnShutdown(func() { calls = append(calls, "hub") })
	server.OnShutdown(func() { calls = append(calls, "events") })

	require.NoError(t, server.Shutdown(context.Background()))
	assert.Equal(t, []string{"hub", "events"}, calls)
}
