package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItemRequest lote y cantidad solicitados. Un producto puede repartirse en varios lotes.
type CheckoutItemRequest struct {
	StockLotID string          `json:"stock_lot_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
}

// CheckoutRequest body para POST /api/orders.
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// RejectOrderRequest body para POST /api/orders/:id/reject.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// UpdateDeliveryRequest body para PATCH /api/orders/:id/delivery.
type UpdateDeliveryRequest struct {
	Status string `json:"status" validate:"required,oneof=preparing out_for_delivery delivered"`
}

// OrderLineResponse línea de la orden en respuestas.
type OrderLineResponse struct {
	ID         string          `json:"id"`
	StockLotID string          `json:"stock_lot_id"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// OrderResponse orden con sus líneas.
type OrderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DeliveryStatus  *string             `json:"delivery_status"` // null salvo en órdenes aprobadas
	ApprovedBy      string              `json:"approved_by,omitempty"`
	RejectedBy      string              `json:"rejected_by,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
	Lines           []OrderLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
