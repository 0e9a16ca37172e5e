package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditTrailEntry registro inmutable de la bitácora: la contribución de un lote a una orden.
// Todo lo que depende del lote o del producto se congela al momento de la venta.
type AuditTrailEntry struct {
	ID                string
	OrderID           string
	StockLotID        string
	ProducerID        string // dueño del lote al momento de la venta
	ProductID         string
	ProductName       string
	Category          Category
	Quantity          decimal.Decimal // cantidad vendida desde el lote
	RemainingBefore   decimal.Decimal // existencia del lote justo antes del descuento
	Prices            PriceSet        // precios del lote al momento de la venta
	ResolvedUnitPrice decimal.Decimal
	StrictWrite       bool // escrito en modo estricto (participa del índice único)
	CreatedAt         time.Time
}

// UnitPrice precio unitario resuelto desde los precios congelados (nunca del lote vivo).
func (e *AuditTrailEntry) UnitPrice() decimal.Decimal {
	return e.Prices.Resolve(e.Category)
}

// Revenue ingreso atribuido al productor por este registro.
func (e *AuditTrailEntry) Revenue() decimal.Decimal {
	return e.Quantity.Mul(e.UnitPrice())
}
