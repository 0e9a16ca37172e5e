package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Agromercado-api/internal/application/audittrail"
	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/inventory"
	"github.com/jhoicas/Agromercado-api/internal/application/order"
	"github.com/jhoicas/Agromercado-api/internal/application/report"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// RequestObserver registra la latencia de cada request (adaptador Prometheus).
type RequestObserver interface {
	Observe(method, route string, status int, d time.Duration)
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	OrderUC     *order.OrderUseCase
	WriterUC    *audittrail.WriterUseCase
	ValidatorUC *audittrail.ValidatorUseCase
	SummaryUC   *audittrail.SummaryUseCase
	ReportUC    *report.ReportUseCase
	InventoryUC *inventory.StockLotUseCase
	JWTSecret   string
	ServiceName string
	HealthCheck func(ctx context.Context) error // nil = sin chequeo de BD
	Gatherer    prometheus.Gatherer             // nil = sin /metrics
	Observer    RequestObserver                 // nil = sin latencias
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Observer != nil {
		app.Use(observeRequests(deps.Observer, deps.Log))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Context()); err != nil {
				deps.Log.Error().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	backoffice := RequireRole(entity.RoleAdmin, entity.RoleStaff)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))

	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.CreateUser)

	// Órdenes
	orderHandler := NewOrderHandler(deps.OrderUC)
	auditHandler := NewAuditTrailHandler(deps.WriterUC, deps.ValidatorUC, deps.SummaryUC, deps.ReportUC)
	orders := protected.Group("/orders")
	orders.Post("/", RequireRole(entity.RoleCustomer), orderHandler.Checkout)
	orders.Get("/", RequireRole(entity.RoleCustomer), orderHandler.ListMine)
	orders.Get("/:id/summary.pdf", backoffice, auditHandler.SummaryPDF)
	orders.Get("/:id/summary", backoffice, auditHandler.Summary)
	orders.Get("/:id", RequireRole(entity.RoleAdmin, entity.RoleStaff, entity.RoleCustomer), orderHandler.Get)
	orders.Post("/:id/approve", backoffice, orderHandler.Approve)
	orders.Post("/:id/reject", backoffice, orderHandler.Reject)
	orders.Patch("/:id/delivery", RequireRole(entity.RoleAdmin, entity.RoleLogistic), orderHandler.UpdateDelivery)

	// Bitácora multi-productor
	orders.Post("/:id/audit-trail", backoffice, auditHandler.Record)
	orders.Post("/:id/audit-trail/validate", backoffice, auditHandler.Validate)

	// Tablero del productor
	reportHandler := NewReportHandler(deps.ReportUC)
	members := protected.Group("/members")
	members.Get("/me/revenue", RequireRole(entity.RoleMember), reportHandler.MyRevenue)
	members.Get("/:id/revenue", backoffice, reportHandler.MemberRevenue)

	// Lotes del productor
	lotHandler := NewStockLotHandler(deps.InventoryUC)
	members.Post("/me/stock-lots", RequireRole(entity.RoleMember), lotHandler.Register)
	members.Get("/me/stock-lots", RequireRole(entity.RoleMember), lotHandler.ListMine)
}

// observeRequests mide cada request y lo registra por ruta (no por path, para acotar cardinalidad).
func observeRequests(obs RequestObserver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		d := time.Since(start)
		obs.Observe(c.Method(), c.Route().Path, status, d)
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", d).
			Msg("request")
		return err
	}
}
