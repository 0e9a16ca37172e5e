package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

var _ repository.AuditTrailRepository = (*AuditTrailRepo)(nil)

// uxAuditTrailOrderLot índice único parcial (orden, lote) WHERE strict_write.
const uxAuditTrailOrderLot = "ux_audit_trail_order_lot"

// AuditTrailRepo bitácora multi-productor sobre PostgreSQL. Solo INSERT y SELECT.
type AuditTrailRepo struct {
	q Querier
}

// NewAuditTrailRepository construye el adaptador de bitácora. Pasar pool o tx (Querier).
func NewAuditTrailRepository(q Querier) *AuditTrailRepo {
	return &AuditTrailRepo{q: q}
}

const auditTrailColumns = `id, order_id, stock_lot_id, producer_id, product_id, product_name,
	category, quantity, remaining_before, unit_price, price_per_kilo, price_per_piece,
	price_per_bundle, resolved_unit_price, strict_write, created_at`

// Create inserta un registro. La violación del índice único de escrituras estrictas se
// traduce a domain.ErrDuplicateLedgerEntry.
func (r *AuditTrailRepo) Create(ctx context.Context, e *entity.AuditTrailEntry) error {
	query := `
		INSERT INTO audit_trail_entries (` + auditTrailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OrderID, e.StockLotID, e.ProducerID, e.ProductID, e.ProductName,
		string(e.Category), e.Quantity, e.RemainingBefore,
		nullDecimal(e.Prices.UnitPrice), nullDecimal(e.Prices.PricePerKilo),
		nullDecimal(e.Prices.PricePerPiece), nullDecimal(e.Prices.PricePerBundle),
		e.ResolvedUnitPrice, e.StrictWrite, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			name := constraintName(err)
			if name == "" || name == uxAuditTrailOrderLot {
				return fmt.Errorf("%w: orden %s, lote %s", domain.ErrDuplicateLedgerEntry, e.OrderID, e.StockLotID)
			}
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert audit trail entry: %w", err)
	}
	return nil
}

// ListByOrder devuelve los registros de la orden en orden de escritura.
func (r *AuditTrailRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.AuditTrailEntry, error) {
	query := `
		SELECT ` + auditTrailColumns + `
		FROM audit_trail_entries WHERE order_id = $1
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list audit trail: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditTrailEntry
	for rows.Next() {
		e, err := scanAuditTrailEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit trail entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExistsForOrderAndLot indica si ya hay al menos un registro para (orden, lote).
func (r *AuditTrailRepo) ExistsForOrderAndLot(ctx context.Context, orderID, stockLotID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM audit_trail_entries WHERE order_id = $1 AND stock_lot_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, orderID, stockLotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists audit trail entry: %w", err)
	}
	return exists, nil
}

// RevenueByProducer agrega cantidad e ingresos del productor en órdenes aprobadas con
// registros en [from, to). El ingreso usa el precio resuelto congelado en cada registro.
func (r *AuditTrailRepo) RevenueByProducer(ctx context.Context, producerID string, from, to time.Time) (*repository.ProducerRevenue, error) {
	query := `
		SELECT
			COUNT(DISTINCT a.order_id),
			COUNT(*),
			COALESCE(SUM(a.quantity), 0),
			COALESCE(SUM(a.quantity * a.resolved_unit_price), 0)
		FROM audit_trail_entries a
		JOIN orders o ON o.id = a.order_id
		WHERE a.producer_id = $1
		  AND o.status = 'approved'
		  AND a.created_at >= $2 AND a.created_at < $3`
	out := repository.ProducerRevenue{ProducerID: producerID}
	var qty, revenue decimal.Decimal
	err := r.q.QueryRow(ctx, query, producerID, from, to).Scan(&out.OrderCount, &out.EntryCount, &qty, &revenue)
	if err != nil {
		return nil, fmt.Errorf("revenue by producer: %w", err)
	}
	out.QuantitySold = qty
	out.Revenue = revenue
	return &out, nil
}

func scanAuditTrailEntry(row pgx.Row) (*entity.AuditTrailEntry, error) {
	var (
		e                         entity.AuditTrailEntry
		category                  string
		unit, kilo, piece, bundle decimal.NullDecimal
	)
	err := row.Scan(
		&e.ID, &e.OrderID, &e.StockLotID, &e.ProducerID, &e.ProductID, &e.ProductName,
		&category, &e.Quantity, &e.RemainingBefore, &unit, &kilo, &piece, &bundle,
		&e.ResolvedUnitPrice, &e.StrictWrite, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = entity.Category(category)
	e.Prices = entity.PriceSet{
		UnitPrice:      decimalPtr(unit),
		PricePerKilo:   decimalPtr(kilo),
		PricePerPiece:  decimalPtr(piece),
		PricePerBundle: decimalPtr(bundle),
	}
	return &e, nil
}
