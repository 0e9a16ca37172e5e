package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain"
)

// Estados de la orden.
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// Estados de entrega (solo aplican a órdenes aprobadas).
const (
	DeliveryPreparing      = "preparing"
	DeliveryOutForDelivery = "out_for_delivery"
	DeliveryDelivered      = "delivered"
)

var deliveryRank = map[string]int{
	DeliveryPreparing:      1,
	DeliveryOutForDelivery: 2,
	DeliveryDelivered:      3,
}

// IsValidDeliveryStatus indica si s es un estado de entrega conocido.
func IsValidDeliveryStatus(s string) bool {
	_, ok := deliveryRank[s]
	return ok
}

// Order representa una compra de un cliente. Puede abarcar lotes de varios productores.
type Order struct {
	ID              string
	CustomerID      string
	Status          string          // pending, approved, rejected
	TotalAmount     decimal.Decimal // = suma de ingresos de la bitácora una vez aprobada
	DeliveryStatus  *string         // nil salvo en órdenes aprobadas
	ApprovedBy      string
	RejectedBy      string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderLine asignación solicitada en el checkout: qué lote aporta qué cantidad.
type OrderLine struct {
	ID         string
	OrderID    string
	StockLotID string
	ProductID  string
	Quantity   decimal.Decimal
}

// Approve pasa la orden de pending a approved y fija el total atribuido.
func (o *Order) Approve(total decimal.Decimal, by string, now time.Time) error {
	if o.Status != OrderStatusPending {
		return domain.ErrInvalidTransition
	}
	preparing := DeliveryPreparing
	o.Status = OrderStatusApproved
	o.TotalAmount = total
	o.DeliveryStatus = &preparing
	o.ApprovedBy = by
	o.UpdatedAt = now
	return nil
}

// Reject rechaza la orden (desde pending o approved). El estado de entrega siempre queda en nil.
func (o *Order) Reject(reason, by string, now time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusApproved {
		return domain.ErrInvalidTransition
	}
	o.Status = OrderStatusRejected
	o.DeliveryStatus = nil
	o.RejectedBy = by
	o.RejectionReason = reason
	o.UpdatedAt = now
	return nil
}

// SetDeliveryStatus avanza el estado de entrega; solo en órdenes aprobadas y sin retroceder.
func (o *Order) SetDeliveryStatus(status string, now time.Time) error {
	next, ok := deliveryRank[status]
	if !ok {
		return domain.ErrInvalidInput
	}
	if o.Status != OrderStatusApproved {
		return domain.ErrInvalidTransition
	}
	if o.DeliveryStatus != nil && deliveryRank[*o.DeliveryStatus] > next {
		return domain.ErrInvalidTransition
	}
	o.DeliveryStatus = &status
	o.UpdatedAt = now
	return nil
}
