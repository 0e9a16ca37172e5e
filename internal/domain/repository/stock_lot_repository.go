package repository

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// StockLotRepository define el puerto de persistencia para lotes de productores.
// Usado dentro de transacciones para garantizar consistencia.
type StockLotRepository interface {
	Create(ctx context.Context, lot *entity.StockLot) error
	// GetByID devuelve (nil, nil) si el lote no existe.
	GetByID(ctx context.Context, id string) (*entity.StockLot, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error)
	UpdateQuantity(ctx context.Context, lot *entity.StockLot) error
	ListByProducer(ctx context.Context, producerID string, limit, offset int) ([]*entity.StockLot, error)
}
