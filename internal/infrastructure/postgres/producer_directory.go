package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

var _ repository.ProducerDirectory = (*ProducerDirectory)(nil)

// ProducerDirectory resuelve productores (usuarios con rol member) en una sola consulta.
type ProducerDirectory struct {
	q Querier
}

// NewProducerDirectory construye el directorio.
func NewProducerDirectory(q Querier) *ProducerDirectory {
	return &ProducerDirectory{q: q}
}

// GetByIDs devuelve los productores encontrados indexados por id. Los ids ausentes no figuran.
func (d *ProducerDirectory) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Producer, error) {
	out := make(map[string]*entity.Producer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id, name, email FROM users WHERE id::text = ANY($1) AND role = 'member'`
	rows, err := d.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get producers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Producer
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("scan producer: %w", err)
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}
