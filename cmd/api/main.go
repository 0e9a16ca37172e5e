package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/Agromercado-api/internal/application/audittrail"
	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/inventory"
	"github.com/jhoicas/Agromercado-api/internal/application/order"
	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/application/report"
	"github.com/jhoicas/Agromercado-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Agromercado-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Agromercado-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Agromercado-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Agromercado-api/internal/interfaces/http"
	"github.com/jhoicas/Agromercado-api/pkg/config"
	"github.com/jhoicas/Agromercado-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("ledger_strict", cfg.Ledger.StrictMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Métricas Prometheus (/metrics)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	auditRepo := postgres.NewAuditTrailRepository(pool)
	producerDir := postgres.NewProducerDirectory(pool)
	stockLotRepo := postgres.NewStockLotRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Bloqueo de login: Redis si está configurado, si no contador en memoria del proceso.
	policy := ports.LockoutPolicy{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      time.Duration(cfg.Login.WindowMinutes) * time.Minute,
		BaseLock:    time.Duration(cfg.Login.BaseLockSeconds) * time.Second,
		MaxLock:     time.Duration(cfg.Login.MaxLockMinutes) * time.Minute,
	}
	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		throttle = infraredis.NewLoginThrottle(rdb, policy)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo de login en Redis")
	} else {
		throttle = auth.NewMemoryThrottle(policy)
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo de login en memoria (una sola instancia)")
	}

	authUC := auth.NewAuthUseCase(userRepo, throttle, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	// Bitácora multi-productor
	ledgerLog := log.Component("audit_trail")
	writerUC := audittrail.NewWriterUseCase(txRunner, ledgerMetrics, ledgerLog, audittrail.WriterConfig{
		StrictMode: cfg.Ledger.StrictMode,
	})
	validatorUC := audittrail.NewValidatorUseCase(orderRepo, auditRepo, ledgerMetrics, ledgerLog)
	summaryUC := audittrail.NewSummaryUseCase(orderRepo, auditRepo, producerDir)

	orderUC := order.NewOrderUseCase(txRunner, orderRepo, writerUC, ledgerMetrics, log.Component("order"))

	inventoryUC := inventory.NewStockLotUseCase(txRunner, stockLotRepo, log.Component("inventory"))

	// PDF: resumen por productor de la orden
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	reportUC := report.NewReportUseCase(orderRepo, auditRepo, summaryUC, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Agromercado API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		OrderUC:     orderUC,
		WriterUC:    writerUC,
		ValidatorUC: validatorUC,
		SummaryUC:   summaryUC,
		ReportUC:    reportUC,
		InventoryUC: inventoryUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		HealthCheck: func(ctx context.Context) error { return postgres.Ping(ctx, pool) },
		Gatherer:    registry,
		Observer:    httpMetrics,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
