package gateway

import (
	"net/http"

	"github.com/ltaportal/procurement/internal/gateway/middleware"
	analytics_http "github.com/ltaportal/procurement/internal/modules/analytics/interfaces/http"
	catalog_http "github.com/ltaportal/procurement/internal/modules/catalog/interfaces/http"
	clients_http "github.com/ltaportal/procurement/internal/modules/clients/interfaces/http"
	document_http "github.com/ltaportal/procurement/internal/modules/document/interfaces/http"
	feedback_http "github.com/ltaportal/procurement/internal/modules/feedback/interfaces/http"
	lta_http "github.com/ltaportal/procurement/internal/modules/lta/interfaces/http"
	notification_http "github.com/ltaportal/procurement/internal/modules/notification/interfaces/http"
	order_http "github.com/ltaportal/procurement/internal/modules/order/interfaces/http"
	offer_http "github.com/ltaportal/procurement/internal/modules/priceoffer/interfaces/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleWare
	ClientHandler       *clients_http.ClientHandler
	CatalogHandler      *catalog_http.CatalogHandler
	LtaHandler          *lta_http.LtaHandler
	OrderHandler        *order_http.OrderHandler
	PriceOfferHandler   *offer_http.PriceOfferHandler
	FeedbackHandler     *feedback_http.FeedbackHandler
	DocumentHandler     *document_http.DocumentHandler
	NotificationHandler *notification_http.NotificationHandler
	AnalyticsHandler    *analytics_http.AnalyticsHandler
	// UploadsDir is served under /uploads/ when files are stored locally.
	UploadsDir string
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	r := NewRouter(config.AuthMiddleware)

	// Health Check
	r.Public("GET /health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	// Prometheus Metrics Endpoint
	r.Public("GET /metrics", promhttp.Handler())

	if config.UploadsDir != "" {
		r.Public("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.UploadsDir))))
	}

	// Client profile
	r.Authenticated("GET /api/client/me", config.ClientHandler.Me)

	// Catalog
	catalog := config.CatalogHandler
	r.Authenticated("GET /api/products", catalog.ListProducts)
	r.Authenticated("GET /api/products/categories", catalog.ListCategories)
	r.Authenticated("GET /api/products/{id}", catalog.GetProduct)
	r.Admin("POST /api/admin/products", catalog.CreateProduct)
	r.Admin("PATCH /api/admin/products/{id}", catalog.UpdateProduct)
	r.Admin("DELETE /api/admin/products/{id}", catalog.DeleteProduct)
	r.Admin("POST /api/admin/products/{id}/image", catalog.UploadImage)
	r.Admin("GET /api/admin/vendors", catalog.ListVendors)
	r.Admin("GET /api/admin/vendors/{id}", catalog.GetVendor)
	r.Admin("POST /api/admin/vendors", catalog.CreateVendor)
	r.Admin("PATCH /api/admin/vendors/{id}", catalog.UpdateVendor)
	r.Admin("DELETE /api/admin/vendors/{id}", catalog.DeleteVendor)

	// Long-term agreements
	lta := config.LtaHandler
	r.Authenticated("GET /api/client/products", lta.ClientProducts)
	r.Authenticated("GET /api/client/ltas", lta.ClientLtas)
	r.Admin("POST /api/admin/ltas", lta.Create)
	r.Admin("GET /api/admin/ltas", lta.List)
	r.Admin("GET /api/admin/ltas/{id}", lta.Get)
	r.Admin("PATCH /api/admin/ltas/{id}/status", lta.SetStatus)
	r.Admin("PUT /api/admin/ltas/{id}/products/{productId}", lta.AssignProduct)
	r.Admin("DELETE /api/admin/ltas/{id}/products/{productId}", lta.RemoveProduct)

	// Orders
	orders := config.OrderHandler
	r.Authenticated("POST /api/client/orders", orders.Create)
	r.Authenticated("GET /api/client/orders", orders.ListMine)
	r.Authenticated("GET /api/client/orders/{id}", orders.GetMine)
	r.Authenticated("POST /api/client/orders/{id}/cancel", orders.CancelMine)
	r.Authenticated("POST /api/client/orders/{id}/modifications", orders.RequestModification)
	r.Admin("GET /api/admin/orders", orders.List)
	r.Admin("GET /api/admin/orders/export", orders.Export)
	r.Admin("GET /api/admin/orders/{id}", orders.Get)
	r.Admin("PATCH /api/admin/orders/{id}/status", orders.UpdateStatus)
	r.Admin("POST /api/admin/orders/{id}/cancel", orders.Cancel)
	r.Admin("PATCH /api/admin/order-modifications/{id}", orders.ReviewModification)

	// Price requests and offers
	offers := config.PriceOfferHandler
	r.Authenticated("POST /api/client/price-requests", offers.SubmitRequest)
	r.Authenticated("GET /api/client/price-requests", offers.ListMyRequests)
	r.Authenticated("GET /api/client/price-offers", offers.ListMine)
	r.Authenticated("GET /api/client/price-offers/{id}", offers.GetMine)
	r.Authenticated("POST /api/client/price-offers/{id}/accept", offers.Accept)
	r.Authenticated("POST /api/client/price-offers/{id}/reject", offers.Reject)
	r.Admin("GET /api/admin/price-requests", offers.ListRequests)
	r.Admin("POST /api/admin/price-offers", offers.CreateOffer)
	r.Admin("GET /api/admin/price-offers", offers.ListOffers)
	r.Admin("GET /api/admin/price-offers/{id}", offers.GetOffer)
	r.Admin("POST /api/admin/price-offers/{id}/send", offers.Send)
	r.Admin("DELETE /api/admin/price-offers/{id}", offers.Delete)

	// Feedback and issue reports
	feedback := config.FeedbackHandler
	r.Authenticated("POST /api/client/feedback", feedback.Submit)
	r.Authenticated("GET /api/client/orders/{id}/feedback", feedback.ForOrder)
	r.Authenticated("POST /api/client/issues", feedback.ReportIssue)
	r.Authenticated("GET /api/client/issues", feedback.ListMyIssues)
	r.Admin("GET /api/admin/feedback", feedback.List)
	r.Admin("GET /api/admin/feedback/stats", feedback.Stats)
	r.Admin("POST /api/admin/feedback/{id}/respond", feedback.Respond)
	r.Admin("GET /api/admin/issues", feedback.ListIssues)
	r.Admin("PATCH /api/admin/issues/{id}", feedback.UpdateIssue)

	// Documents
	docs := config.DocumentHandler
	r.Authenticated("GET /api/client/documents", docs.ListMine)
	r.Authenticated("POST /api/documents/{id}/token", docs.IssueToken)
	r.Public("GET /api/documents/{id}/download", http.HandlerFunc(docs.Download))
	r.Admin("POST /api/admin/documents", docs.Upload)
	r.Admin("GET /api/admin/documents", docs.List)
	r.Admin("DELETE /api/admin/documents/{id}", docs.Delete)

	// Notifications
	notifications := config.NotificationHandler
	r.Authenticated("GET /api/client/notifications", notifications.List)
	r.Authenticated("GET /api/client/notifications/unread-count", notifications.UnreadCount)
	r.Authenticated("PATCH /api/client/notifications/{id}/read", notifications.MarkAsRead)
	r.Authenticated("PATCH /api/client/notifications/mark-all-read", notifications.MarkAllAsRead)
	r.Authenticated("DELETE /api/client/notifications/read", notifications.DeleteAllRead)
	r.Authenticated("DELETE /api/client/notifications/{id}", notifications.Delete)
	r.Authenticated("GET /api/ws", notifications.Subscribe)

	// Admin dashboard
	analytics := config.AnalyticsHandler
	r.Admin("GET /api/admin/analytics/overview", analytics.GetOverview)
	r.Admin("GET /api/admin/analytics/top-products", analytics.GetTopProducts)

	return r.Mux()
}
