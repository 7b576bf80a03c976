package service

import (
	"context"
)

// OrderEvent is published whenever an order or its delivery changes state,
// so downstream consumers (dashboards, analytics, notification workers) can
// react without polling.
type OrderEvent struct {
	RequestID      string `json:"request_id,omitempty"` // For distributed tracing
	EventType      string `json:"event_type"`           // e.g. "order.status_changed", "delivery.status_changed"
	OrderID        string `json:"order_id"`
	PharmacyID     string `json:"pharmacy_id,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	OrderStatus    string `json:"order_status,omitempty"`
	DeliveryStatus string `json:"delivery_status,omitempty"`
}

// Event types carried by OrderEvent.
const (
	EventOrderPlaced           = "order.placed"
	EventOrderStatusChanged    = "order.status_changed"
	EventDeliveryCreated       = "delivery.created"
	EventDeliveryStatusChanged = "delivery.status_changed"
)

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishOrderEvent publishes an order lifecycle event for async processing.
	PublishOrderEvent(ctx context.Context, event *OrderEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
