package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionRequest aporte de un lote a la orden.
type ContributionRequest struct {
	StockLotID      string          `json:"stock_lot_id" validate:"required,uuid"`
	ProductID       string          `json:"product_id" validate:"omitempty,uuid"`
	Category        string          `json:"category" validate:"omitempty,oneof=kilo piece bundle"`
	Quantity        decimal.Decimal `json:"quantity" validate:"required"`
	RemainingBefore decimal.Decimal `json:"remaining_before"`
}

// RecordSaleRequest body para POST /api/orders/:id/audit-trail.
type RecordSaleRequest struct {
	Contributions []ContributionRequest `json:"contributions" validate:"required,min=1,dive"`
}

// ValidateAuditTrailRequest body para POST /api/orders/:id/audit-trail/validate.
type ValidateAuditTrailRequest struct {
	ExpectedProducerIDs []string `json:"expected_producer_ids" validate:"required,min=1,dive,required"`
}

// AuditTrailEntryResponse registro de bitácora en respuestas.
type AuditTrailEntryResponse struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	StockLotID        string          `json:"stock_lot_id"`
	ProducerID        string          `json:"producer_id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Category          string          `json:"category"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingBefore   decimal.Decimal `json:"remaining_before"`
	ResolvedUnitPrice decimal.Decimal `json:"unit_price"`
	Revenue           decimal.Decimal `json:"revenue"`
	CreatedAt         time.Time       `json:"created_at"`
}

// RecordSaleResponse salida de la escritura de la bitácora.
type RecordSaleResponse struct {
	OrderID string                    `json:"order_id"`
	Mode    string                    `json:"mode"` // strict | lenient
	Entries []AuditTrailEntryResponse `json:"entries"`
}
