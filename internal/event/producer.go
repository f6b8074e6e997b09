package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	pkgkafka "github.com/ronjeternate/BizarreAdventure/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
	TopicOrderCanceled      = "storefront.order.canceled"
	TopicCartUpdated        = "storefront.cart.updated"
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeCart  = "cart"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Total     int64           `json:"total"`
	ItemCount int             `json:"item_count"`
	Items     []OrderItemData `json:"items"`
}

// OrderItemData is the item payload within order events.
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderStatusChangedData is the payload for order.status_changed and
// order.canceled events.
type OrderStatusChangedData struct {
	OrderID      string `json:"order_id"`
	UserID       string `json:"user_id"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID    string `json:"user_id"`
	LineCount int    `json:"line_count"`
	Subtotal  int64  `json:"subtotal"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	items := make([]OrderItemData, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		ItemCount: len(o.Items),
		Items:     items,
	}

	return p.publish(ctx, TopicOrderCreated, o.ID, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, o *domain.Order, oldStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   o.ID,
		UserID:    o.UserID,
		OldStatus: oldStatus,
		NewStatus: o.Status,
	}

	return p.publish(ctx, TopicOrderStatusChanged, o.ID, AggregateTypeOrder, data)
}

// PublishOrderCanceled publishes an order.canceled event.
func (p *Producer) PublishOrderCanceled(ctx context.Context, o *domain.Order, oldStatus string) error {
	data := OrderStatusChangedData{
		OrderID:      o.ID,
		UserID:       o.UserID,
		OldStatus:    oldStatus,
		NewStatus:    o.Status,
		CancelReason: o.CancelReason,
	}

	return p.publish(ctx, TopicOrderCanceled, o.ID, AggregateTypeOrder, data)
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		UserID:    cart.UserID,
		LineCount: cart.LineCount(),
		Subtotal:  cart.Subtotal(),
	}

	return p.publish(ctx, TopicCartUpdated, cart.UserID, AggregateTypeCart, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
