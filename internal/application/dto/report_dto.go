package dto

import "github.com/shopspring/decimal"

// MemberRevenueRequest query de GET /api/members/:id/revenue.
type MemberRevenueRequest struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD; por defecto primer día del mes actual
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`   // YYYY-MM-DD inclusivo; por defecto hoy
}

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MemberRevenueDTO lo vendido por un productor en el período (solo órdenes aprobadas).
type MemberRevenueDTO struct {
	ProducerID   string          `json:"producer_id"`
	Period       PeriodDTO       `json:"period"`
	OrderCount   int             `json:"order_count"`
	EntryCount   int             `json:"entry_count"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}
