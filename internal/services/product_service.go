package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	publisher  MessagePublisher
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

// NewProductService creates a new ProductService. publisher may be nil, in which
// case no product events are emitted.
func NewProductService(
	repo repositories.ProductRepository,
	publisher MessagePublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	operations, err := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)
	if err != nil {
		logger.Warn("Failed to create products.operations counter", slog.String("error", err.Error()))
	}

	return &ProductService{
		repo:       repo,
		publisher:  publisher,
		tracer:     tracer,
		logger:     logger,
		operations: operations,
	}
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, stock int) (*models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()
	tagActor(ctx, span)

	span.SetAttributes(
		attribute.String("product.name", name),
		attribute.String("product.price", price.String()),
		attribute.Int("product.stock", stock),
	)

	product := models.NewProduct(name, description, price, stock)
	if err := product.Validate(); err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("product.id", created.ID))
	s.succeed(ctx, span, "create")
	s.logger.InfoContext(ctx, "Product created", slog.String("product_id", created.ID))

	publishEvent(ctx, s.publisher, s.logger, ProductEvent{
		Type:       EventProductCreated,
		ProductID:  created.ID,
		Product:    created,
		OccurredAt: created.CreatedAt,
	})
	return created, nil
}

// GetProductByID retrieves a single product by its ID and fails with a
// *models.NotFoundError when it does not exist.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.findOrFail(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "read", err)
	}

	s.succeed(ctx, span, "read")
	return product, nil
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetAllProducts")
	defer span.End()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.succeed(ctx, span, "list")
	return products, nil
}

// UpdateProduct merges the fields set in update into the stored product and
// persists the resulting snapshot. An empty update returns the stored product
// unchanged.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()
	tagActor(ctx, span)

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.findOrFail(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	// Nothing to merge: skip the write so the version and UpdatedAt stay put.
	if update.IsEmpty() {
		s.succeed(ctx, span, "update")
		return product, nil
	}

	product.Apply(update)
	if err := product.Validate(); err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	s.succeed(ctx, span, "update")
	s.logger.InfoContext(ctx, "Product updated",
		slog.String("product_id", id),
		slog.Int64("version", updated.Version),
	)

	publishEvent(ctx, s.publisher, s.logger, ProductEvent{
		Type:       EventProductUpdated,
		ProductID:  id,
		Product:    updated,
		OccurredAt: updated.UpdatedAt,
	})
	return updated, nil
}

// DeleteProduct deletes a product by its ID. A missing product yields a
// *models.NotFoundError; a delete that removes nothing yields a
// *models.OperationFailedError.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()
	tagActor(ctx, span)

	span.SetAttributes(attribute.String("product.id", id))

	if _, err := s.findOrFail(ctx, id); err != nil {
		return s.fail(ctx, span, "delete", err)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail(ctx, span, "delete", err)
	}
	if !removed {
		return s.fail(ctx, span, "delete", &models.OperationFailedError{Op: "delete", Resource: "product", ID: id})
	}

	s.succeed(ctx, span, "delete")
	s.logger.InfoContext(ctx, "Product deleted", slog.String("product_id", id))

	publishEvent(ctx, s.publisher, s.logger, ProductEvent{
		Type:       EventProductDeleted,
		ProductID:  id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// findOrFail is the lookup-or-fail guard shared by reads and mutations.
func (s *ProductService) findOrFail(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.NotFoundError{Resource: "product", ID: id}
	}
	return product, nil
}

// fail records err on the span and the operations counter, then returns it as is.
func (s *ProductService) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.count(ctx, op, resultOf(err))

	s.logger.WarnContext(ctx, "Product operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return err
}

func (s *ProductService) succeed(ctx context.Context, span trace.Span, op string) {
	span.SetStatus(codes.Ok, "")
	s.count(ctx, op, "success")
}

func (s *ProductService) count(ctx context.Context, op, result string) {
	if s.operations == nil {
		return
	}
	s.operations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("result", result),
		),
	)
}

// resultOf maps an error onto the result label of the operations counter.
func resultOf(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "invalid"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	default:
		return "failure"
	}
}
