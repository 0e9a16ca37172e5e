package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterStockLotRequest body para POST /api/members/me/stock-lots.
// Si ProductID viene vacío se da de alta el producto con ProductName y Unit.
type RegisterStockLotRequest struct {
	ProductID      string           `json:"product_id" validate:"omitempty,uuid"`
	ProductName    string           `json:"product_name" validate:"required_without=ProductID,max=200"`
	Unit           string           `json:"unit" validate:"max=30"`
	Category       string           `json:"category" validate:"required,oneof=kilo piece bundle"`
	Quantity       decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	PricePerKilo   *decimal.Decimal `json:"price_per_kilo"`
	PricePerPiece  *decimal.Decimal `json:"price_per_piece"`
	PricePerBundle *decimal.Decimal `json:"price_per_bundle"`
}

// StockLotResponse lote del productor en respuestas.
type StockLotResponse struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	ProducerID     string           `json:"producer_id"`
	Category       string           `json:"category"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	PricePerKilo   *decimal.Decimal `json:"price_per_kilo,omitempty"`
	PricePerPiece  *decimal.Decimal `json:"price_per_piece,omitempty"`
	PricePerBundle *decimal.Decimal `json:"price_per_bundle,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
