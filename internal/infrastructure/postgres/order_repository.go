package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, customer_id, status, total_amount, delivery_status,
	approved_by, rejected_by, rejection_reason, created_at, updated_at`

// Create persiste la cabecera de la orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.CustomerID, o.Status, o.TotalAmount, o.DeliveryStatus,
		o.ApprovedBy, o.RejectedBy, o.RejectionReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateLine persiste una línea (lote → cantidad) de la orden.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, stock_lot_id, product_id, quantity)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, l.ID, l.OrderID, l.StockLotID, l.ProductID, l.Quantity)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

// GetLines devuelve las líneas de la orden en orden de inserción.
func (r *OrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, stock_lot_id, product_id, quantity
		FROM order_lines WHERE order_id = $1
		ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.StockLotID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// UpdateStatus persiste estado, total, estado de entrega y auditoría de la decisión.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET
			status = $2, total_amount = $3, delivery_status = $4,
			approved_by = $5, rejected_by = $6, rejection_reason = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.Status, o.TotalAmount, o.DeliveryStatus,
		o.ApprovedBy, o.RejectedBy, o.RejectionReason, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, o.ID)
	}
	return nil
}

// ListByCustomer lista las órdenes de un cliente, más recientes primero.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount, &o.DeliveryStatus,
		&o.ApprovedBy, &o.RejectedBy, &o.RejectionReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
