package ports

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Orders     repository.OrderRepository
	StockLots  repository.StockLotRepository
	Products   repository.ProductRepository
	AuditTrail repository.AuditTrailRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// Garantiza que una venta multi-productor se registre completa o no se registre.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
