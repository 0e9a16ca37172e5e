package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain"
)

// Category categoría de venta de un lote (define qué precio aplica).
type Category string

// Categorías de venta.
const (
	CategoryKilo   Category = "kilo"   // por peso
	CategoryPiece  Category = "piece"  // por pieza
	CategoryBundle Category = "bundle" // por atado
)

// IsValid indica si la categoría es una de las soportadas.
func (c Category) IsValid() bool {
	switch c {
	case CategoryKilo, CategoryPiece, CategoryBundle:
		return true
	}
	return false
}

// PriceSet agrupa los precios de un lote. Cualquiera puede faltar (nil).
type PriceSet struct {
	UnitPrice      *decimal.Decimal // precio genérico (fallback)
	PricePerKilo   *decimal.Decimal
	PricePerPiece  *decimal.Decimal
	PricePerBundle *decimal.Decimal
}

// StockLot representa el lote de inventario de un productor para un producto y categoría.
// Pertenece a un único productor; Quantity nunca es negativa.
type StockLot struct {
	ID         string
	ProductID  string
	ProducerID string // miembro dueño del lote
	Category   Category
	Quantity   decimal.Decimal // cantidad disponible
	Prices     PriceSet
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Deduct descuenta qty del lote. No permite dejar la cantidad en negativo.
func (s *StockLot) Deduct(qty decimal.Decimal, now time.Time) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if s.Quantity.LessThan(qty) {
		return domain.ErrInsufficientStock
	}
	s.Quantity = s.Quantity.Sub(qty)
	s.UpdatedAt = now
	return nil
}

// Resolve devuelve el precio unitario para la categoría: el precio específico si existe,
// si no el precio genérico, y cero si ninguno está definido.
func (p PriceSet) Resolve(c Category) decimal.Decimal {
	var specific *decimal.Decimal
	switch c {
	case CategoryKilo:
		specific = p.PricePerKilo
	case CategoryPiece:
		specific = p.PricePerPiece
	case CategoryBundle:
		specific = p.PricePerBundle
	}
	if specific != nil {
		return *specific
	}
	if p.UnitPrice != nil {
		return *p.UnitPrice
	}
	return decimal.Zero
}
