package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/interfaces/http/rest/handlers"
	"github.com/humbertoamdc/torvek-sub000/interfaces/http/rest/middleware"
	"github.com/humbertoamdc/torvek-sub000/pkg/auth"
	"github.com/humbertoamdc/torvek-sub000/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	identity    ports.IdentityManager
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter

	projects   *handlers.ProjectHandler
	quotations *handlers.QuotationHandler
	parts      *handlers.PartHandler
	orders     *handlers.OrderHandler
	admin      *handlers.AdminHandler
	webhooks   *handlers.PaymentWebhookHandler

	allowedOrigins []string
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil when metric
// publishing is disabled.
func NewRouter(
	identity ports.IdentityManager,
	ipLimiter auth.RateLimiter,
	userLimiter auth.RateLimiter,
	projects *handlers.ProjectHandler,
	quotations *handlers.QuotationHandler,
	parts *handlers.PartHandler,
	orders *handlers.OrderHandler,
	admin *handlers.AdminHandler,
	webhooks *handlers.PaymentWebhookHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		identity:       identity,
		ipLimiter:      ipLimiter,
		userLimiter:    userLimiter,
		projects:       projects,
		quotations:     quotations,
		parts:          parts,
		orders:         orders,
		admin:          admin,
		webhooks:       webhooks,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	authenticate := middleware.Authenticate(rt.identity, rt.ipLimiter, rt.userLimiter, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		// Customer portal
		r.Route("/customers", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(ports.RoleClient))

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", rt.projects.CreateProject)
				r.Get("/", rt.projects.ListProjects)
				r.Delete("/{projectID}", rt.projects.DeleteProject)

				r.Route("/{projectID}/quotations", func(r chi.Router) {
					r.Post("/", rt.quotations.CreateQuotation)
					r.Get("/", rt.quotations.ListQuotations)
					r.Delete("/{quotationID}", rt.quotations.DeleteQuotation)
					r.Post("/{quotationID}/submit", rt.quotations.SubmitQuotation)
					r.Post("/{quotationID}/checkout", rt.quotations.CreateCheckout)

					r.Route("/{quotationID}/parts", func(r chi.Router) {
						r.Post("/", rt.parts.CreateParts)
						r.Get("/", rt.parts.ListParts)
						r.Patch("/{partID}", rt.parts.UpdatePart)
						r.Delete("/{partID}", rt.parts.DeletePart)
					})
				})
			})

			r.Get("/quotations", rt.quotations.ListClientQuotations)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orders.ListClientOrders)
				r.Get("/{orderID}", rt.orders.GetOrder)
				r.Put("/{orderID}/recipient", rt.orders.UpdateRecipient)
			})
		})

		// Admin portal: review queue, pricing, manual order creation
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(ports.RoleAdmin))

			r.Get("/quotations/pending-review", rt.admin.ListPendingReview)
			r.Get("/quotations/{quotationID}/parts", rt.admin.ListQuotationParts)
			r.Post("/projects/{projectID}/quotations/{quotationID}/price", rt.admin.PriceQuotation)
			r.Post("/projects/{projectID}/quotations/{quotationID}/orders", rt.admin.CreateOrders)
		})

		// Ops portal: the workshop backlog and order progression
		r.Route("/ops", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(ports.RoleOps, ports.RoleAdmin))

			r.Get("/orders/open", rt.orders.ListOpenOrders)
			r.Put("/orders/{orderID}/status", rt.orders.UpdateStatus)
		})

		// Webhooks are authenticated by payment verification against the
		// provider, not by session.
		r.Post("/webhooks/payments", rt.webhooks.HandleNotification)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
