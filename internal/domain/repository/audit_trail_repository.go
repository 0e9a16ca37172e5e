package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// AuditTrailRepository puerto de la bitácora multi-productor. Solo agrega y lee:
// los registros son inmutables, no hay Update ni Delete.
type AuditTrailRepository interface {
	// Create inserta un registro. Una violación del índice único (orden, lote) en escrituras
	// estrictas se devuelve como domain.ErrDuplicateLedgerEntry.
	Create(ctx context.Context, entry *entity.AuditTrailEntry) error
	// ListByOrder devuelve los registros de la orden en orden de escritura.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.AuditTrailEntry, error)
	ExistsForOrderAndLot(ctx context.Context, orderID, stockLotID string) (bool, error)
	// RevenueByProducer agrega lo vendido por un productor en órdenes aprobadas del rango.
	RevenueByProducer(ctx context.Context, producerID string, from, to time.Time) (*ProducerRevenue, error)
}

// ProducerRevenue resultado agregado para el tablero del productor.
type ProducerRevenue struct {
	ProducerID   string
	OrderCount   int
	EntryCount   int
	QuantitySold decimal.Decimal
	Revenue      decimal.Decimal
}
