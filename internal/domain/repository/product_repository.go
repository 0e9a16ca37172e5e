package repository

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
