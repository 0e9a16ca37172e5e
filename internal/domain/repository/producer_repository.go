package repository

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// ProducerDirectory resuelve datos de productores (miembros) para reportes.
// GetByIDs resuelve en una sola consulta para evitar N+1.
type ProducerDirectory interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Producer, error)
}
