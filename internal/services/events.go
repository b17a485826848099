package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Routing keys of the events published after a checkout commits.
const (
	EventOrderPlaced    = "order.placed"
	EventDiscountMinted = "discount.minted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderPlacedEvent is the body of an order.placed event.
type OrderPlacedEvent struct {
	OrderID         uint            `json:"order_id"`
	UserID          string          `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountCode    *string         `json:"discount_code"`
	NewDiscountCode *string         `json:"new_discount_code"`
	PlacedAt        time.Time       `json:"placed_at"`
}

// DiscountMintedEvent is the body of a discount.minted event.
type DiscountMintedEvent struct {
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TriggerOrderID     uint    `json:"trigger_order_id"`
}

// publishEvent is best effort: the order is already committed, so a broker
// outage only costs the notification.
func publishEvent(ctx context.Context, p EventPublisher, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("failed to marshal event")
		return
	}
	if err := p.Publish(ctx, routingKey, body); err != nil {
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
		return
	}
	log.Debug().Str("routing_key", routingKey).Msg("published event")
}
