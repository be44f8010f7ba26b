package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Mantenimiento-api/internal/application/billing"
	appsync "github.com/jhoicas/Mantenimiento-api/internal/application/sync"
	"github.com/jhoicas/Mantenimiento-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Mantenimiento-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
	httpRouter "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)

	// Cliente QBO: en modo "dev" el motor corre completo contra el cliente en
	// memoria, sin tocar la red.
	var qboClient qbo.Client
	creds := qbo.Credentials{RealmID: cfg.QBO.RealmID, AccessToken: cfg.QBO.AccessToken}
	if cfg.QBO.Environment == "dev" {
		qboClient = qbo.NewMemoryClient()
		creds = qbo.Credentials{RealmID: "dev", AccessToken: "dev"}
		log.Warn().Msg("QBO en modo dev: cliente en memoria, nada sale a la red")
	} else {
		qboClient = qbo.NewHTTPClient(creds, qbo.HTTPClientOptions{
			Sandbox:      cfg.QBO.Environment == "sandbox",
			BaseURL:      cfg.QBO.BaseURL,
			MinorVersion: cfg.QBO.MinorVersion,
		})
	}

	orchestrator := appsync.NewOrchestrator(
		companyRepo, locationRepo, invoiceRepo,
		qboClient, qbo.NewMapper(cfg.QBO.Currency), creds,
		appsync.DefaultRetryPolicy(), log,
	)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo, companyRepo)
	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo, locationRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(invoiceRepo, locationRepo, companyRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:    companyUC,
		LocationUC:   locationUC,
		InvoiceUC:    invoiceUC,
		PDFUC:        pdfUC,
		Orchestrator: orchestrator,
		JWTSecret:    cfg.JWT.Secret,
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
