package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const stockLotColumns = `id, product_id, producer_id, category, quantity,
	unit_price, price_per_kilo, price_per_piece, price_per_bundle, created_at, updated_at`

// Create persiste un lote nuevo.
func (r *StockLotRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (` + stockLotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.ProducerID, string(lot.Category), lot.Quantity,
		nullDecimal(lot.Prices.UnitPrice), nullDecimal(lot.Prices.PricePerKilo),
		nullDecimal(lot.Prices.PricePerPiece), nullDecimal(lot.Prices.PricePerBundle),
		lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; (nil, nil) si no existe.
func (r *StockLotRepo) GetByID(ctx context.Context, id string) (*entity.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE id = $1`
	lot, err := scanStockLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock lot: %w", err)
	}
	return lot, nil
}

// GetForUpdate obtiene el lote y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE id = $1 FOR UPDATE`
	lot, err := scanStockLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock lot for update: %w", err)
	}
	return lot, nil
}

// UpdateQuantity persiste la cantidad disponible del lote.
func (r *StockLotRepo) UpdateQuantity(ctx context.Context, lot *entity.StockLot) error {
	query := `UPDATE stock_lots SET quantity = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lot.ID, lot.Quantity, lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock lot quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrReferenceNotFound, lot.ID)
	}
	return nil
}

// ListByProducer lista los lotes de un productor, más recientes primero.
func (r *StockLotRepo) ListByProducer(ctx context.Context, producerID string, limit, offset int) ([]*entity.StockLot, error) {
	query := `
		SELECT ` + stockLotColumns + `
		FROM stock_lots WHERE producer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, producerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock lots: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockLot
	for rows.Next() {
		lot, err := scanStockLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

func scanStockLot(row pgx.Row) (*entity.StockLot, error) {
	var (
		lot                       entity.StockLot
		category                  string
		unit, kilo, piece, bundle decimal.NullDecimal
	)
	err := row.Scan(
		&lot.ID, &lot.ProductID, &lot.ProducerID, &category, &lot.Quantity,
		&unit, &kilo, &piece, &bundle, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lot.Category = entity.Category(category)
	lot.Prices = entity.PriceSet{
		UnitPrice:      decimalPtr(unit),
		PricePerKilo:   decimalPtr(kilo),
		PricePerPiece:  decimalPtr(piece),
		PricePerBundle: decimalPtr(bundle),
	}
	return &lot, nil
}
