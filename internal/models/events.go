package models

import "time"

// Event types
const (
	EventTypeStockReserved  = "STOCK_RESERVED"
	EventTypeStockReleased  = "STOCK_RELEASED"
	EventTypeStockAdjusted  = "STOCK_ADJUSTED"
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductUpdated = "PRODUCT_UPDATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// StockChangedEvent is published whenever a product's on-hand quantity moves,
// whether by reservation, cancellation, or administrative adjustment
type StockChangedEvent struct {
	BaseEvent
	ProductID     int64 `json:"product_id"`
	ReservationID int64 `json:"reservation_id,omitempty"`
	Quantity      int   `json:"quantity"`
	Remaining     int   `json:"remaining"`
}

// ProductLifecycleEvent is published on product create/update/delete
type ProductLifecycleEvent struct {
	BaseEvent
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}
