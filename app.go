package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/telemetry"
	"productapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"gorm.io/gorm"
)

// App is the assembled HTTP server together with the resources it owns.
type App struct {
	Fiber          *fiber.App
	ProductService *services.ProductService
	AuthService    *services.AuthService

	cfg       *config.Config
	logger    *slog.Logger
	accessLog io.Writer
	db        *gorm.DB
	mq        *rabbitmq.Client
	telemetry *telemetry.Telemetry
}

// NewApp wires configuration into repositories, services and routes. One JSON
// access log line per request is written to accessLog.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, accessLog io.Writer) (*App, error) {
	tel, err := telemetry.New(ctx, cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a := &App{cfg: cfg, logger: logger, accessLog: accessLog, telemetry: tel}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.db = db

	var productRepo repositories.ProductRepository
	if cfg.Database.Driver == config.DriverMemory {
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		productRepo = repositories.NewGORMProductRepository(db)
	}
	userRepo := repositories.NewGORMUserRepository(db)

	// A nil *rabbitmq.Client must not reach the service as a non-nil interface.
	var publisher services.MessagePublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, logger)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mq = mq
		publisher = mq
	}

	a.ProductService = services.NewProductService(productRepo, publisher, tel.Tracer(), tel.Meter(), logger)
	a.AuthService = services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	a.Fiber = a.newRouter()
	return a, nil
}

func (a *App) newRouter() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      a.cfg.Telemetry.ServiceName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(middleware.Tracing(a.telemetry.Tracer()))
	app.Use(middleware.RequestLogger(a.accessLog))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": a.cfg.Database.Driver,
			"rabbitmq": a.mq != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(a.telemetry.MetricsHandler))

	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(a.AuthService, a.logger).RegisterRoutes(apiV1)

	var writeGuards []fiber.Handler
	if a.cfg.Auth.Enabled {
		writeGuards = append(writeGuards, middleware.AuthRequired(a.AuthService, a.logger))
	}
	handlers.NewProductHandler(a.ProductService, a.logger).RegisterRoutes(apiV1, writeGuards...)

	return app
}

// StartConsumer logs every product event delivered to the product events queue.
// It is a no-op when RabbitMQ is disabled.
func (a *App) StartConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeProductEvents(productEventLogger(a.logger))
}

func productEventLogger(logger *slog.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.ProductEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("decode product event: %w", err)
		}
		logger.Info("Received product event",
			slog.String("type", event.Type),
			slog.String("product_id", event.ProductID),
			slog.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}

// Seed inserts a few demo products.
func (a *App) Seed(ctx context.Context) error {
	seed := []struct {
		name, description, price string
		stock                    int
	}{
		{"Laptop", "High performance laptop", "1200.00", 10},
		{"Keyboard", "Mechanical keyboard", "75.00", 25},
		{"Mouse", "Ergonomic wireless mouse", "25.00", 50},
	}

	for _, p := range seed {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return err
		}
		product, err := a.ProductService.CreateProduct(ctx, p.name, p.description, price, p.stock)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.name, err)
		}
		a.logger.Info("Seeded product", slog.String("name", product.Name), slog.String("id", product.ID))
	}
	return nil
}

// Close releases the message broker, database and telemetry providers.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.mq != nil {
		errs = append(errs, a.mq.Close())
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
