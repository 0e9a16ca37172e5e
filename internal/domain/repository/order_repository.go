package repository

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	// GetByID devuelve (nil, nil) si la orden no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	// UpdateStatus persiste status, total, delivery_status, aprobado/rechazado por y motivo.
	UpdateStatus(ctx context.Context, order *entity.Order) error
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Order, error)
}
