package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"productapi/internal/models"
)

// Product event types, used as routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// MessagePublisher delivers an encoded message under a routing key.
// *rabbitmq.Client satisfies it.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// ProductEvent is the payload published after a product mutation.
type ProductEvent struct {
	Type       string          `json:"type"`
	ProductID  string          `json:"product_id"`
	Product    *models.Product `json:"product,omitempty"`
	UserID     string          `json:"user_id,omitempty"` // Set when the request was authenticated
	OccurredAt time.Time       `json:"occurred_at"`
}

// publishEvent publishes best-effort: the mutation is already committed, so a
// failure is logged and not returned.
func publishEvent(ctx context.Context, publisher MessagePublisher, logger *slog.Logger, event ProductEvent) {
	if publisher == nil {
		return
	}
	if userID, ok := UserIDFromContext(ctx); ok {
		event.UserID = userID
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.WarnContext(ctx, "Failed to marshal product event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := publisher.Publish(ctx, event.Type, body); err != nil {
		logger.WarnContext(ctx, "Failed to publish product event",
			slog.String("type", event.Type),
			slog.String("product_id", event.ProductID),
			slog.String("error", err.Error()),
		)
		return
	}

	logger.DebugContext(ctx, "Published product event",
		slog.String("type", event.Type),
		slog.String("product_id", event.ProductID),
	)
}
