package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/gateway"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/analytics"
	"github.com/ltaportal/procurement/internal/modules/catalog"
	"github.com/ltaportal/procurement/internal/modules/clients"
	"github.com/ltaportal/procurement/internal/modules/document"
	"github.com/ltaportal/procurement/internal/modules/feedback"
	"github.com/ltaportal/procurement/internal/modules/filestorage"
	"github.com/ltaportal/procurement/internal/modules/lta"
	"github.com/ltaportal/procurement/internal/modules/notification"
	"github.com/ltaportal/procurement/internal/modules/order"
	"github.com/ltaportal/procurement/internal/modules/priceoffer"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/config"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"go.uber.org/zap"
)

type app struct {
	handler http.Handler
	close   func()
}

// newApp wires every module and returns the root handler. close stops the
// websocket hub and flushes the event publisher.
func newApp(ctx context.Context, cfg config.Config, db *sqlx.DB, c cache.Cache, logger *zap.Logger) (*app, error) {
	files, err := filestorage.NewModule(ctx, cfg.FileStorage, logger)
	if err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	publisher := events.New(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, logger)

	clientsModule := clients.NewModule(db, logger)
	notificationModule := notification.NewModule(db, clientsModule.Directory(), logger)
	notifier := notificationModule.Service()

	catalogModule := catalog.NewModule(db, files.Service(), c, cfg.Portal.ProductCacheTTL, logger)
	ltaModule := lta.NewModule(db, catalogModule.ProductFinder(), c, cfg.Portal.ProductCacheTTL, logger)

	orderModule := order.NewModule(db, order.Dependencies{
		Pricer:    ltaModule.Service(),
		Products:  catalogModule.ProductFinder(),
		Clients:   clientsModule.Directory(),
		Notifier:  notifier,
		Publisher: publisher,
	}, logger)

	offerModule := priceoffer.NewModule(db, priceoffer.Dependencies{
		Agreements: ltaModule.Service(),
		Products:   catalogModule.ProductFinder(),
		Notifier:   notifier,
		Publisher:  publisher,
		TaxRate:    cfg.Portal.TaxRate,
	}, logger)

	feedbackModule := feedback.NewModule(db, orderModule.Service(), notifier, publisher, logger)
	documentModule := document.NewModule(db, files.Service(), offerModule.Service(), c,
		cfg.Portal.DocumentTokenTTL, cfg.Server.PublicBaseURL, logger)
	analyticsModule := analytics.NewModule(db, logger)

	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
		ClientHandler:       clientsModule.HTTPHandler(),
		CatalogHandler:      catalogModule.HTTPHandler(),
		LtaHandler:          ltaModule.HTTPHandler(),
		OrderHandler:        orderModule.HTTPHandler(),
		PriceOfferHandler:   offerModule.HTTPHandler(),
		FeedbackHandler:     feedbackModule.HTTPHandler(),
		DocumentHandler:     documentModule.HTTPHandler(),
		NotificationHandler: notificationModule.HTTPHandler(),
		AnalyticsHandler:    analyticsModule.HTTPHandler(),
		UploadsDir:          files.LocalDir(),
	})

	var handler http.Handler = middleware.CORSMiddleware(mux, cfg.Server.AllowedOrigins)
	handler = middleware.PrometheusMiddleware(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Recoverer(logger)(handler)

	return &app{
		handler: handler,
		close: func() {
			notificationModule.Shutdown()
			if err := publisher.Close(); err != nil {
				logger.Warn("event publisher close failed", zap.Error(err))
			}
		},
	}, nil
}
