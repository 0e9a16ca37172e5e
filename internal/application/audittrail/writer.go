// Package audittrail contiene los casos de uso de la bitácora multi-productor:
// escritura de una venta repartida en varios lotes, conciliación y resumen por orden.
package audittrail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// Modos de escritura (etiqueta de métricas).
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

// Contribution "el lote X aportó la cantidad Q a la orden".
// RemainingBefore es la existencia del lote justo antes de este descuento.
type Contribution struct {
	StockLotID      string
	ProductID       string
	Category        entity.Category // vacío = categoría del lote
	Quantity        decimal.Decimal
	RemainingBefore decimal.Decimal
}

// WriterConfig configuración del escritor.
// StrictMode rechaza en escritura cualquier (orden, lote) repetido; en modo permisivo los
// duplicados se escriben tal cual y solo los detecta el validador.
type WriterConfig struct {
	StrictMode bool
}

// WriterUseCase escribe la bitácora de una venta multi-productor en una sola transacción.
type WriterUseCase struct {
	txRunner ports.TxRunner
	metrics  ports.LedgerMetrics
	log      zerolog.Logger
	strict   bool
	now      func() time.Time
}

// NewWriterUseCase construye el caso de uso. metrics puede ser nil.
func NewWriterUseCase(txRunner ports.TxRunner, metrics ports.LedgerMetrics, log zerolog.Logger, cfg WriterConfig) *WriterUseCase {
	if metrics == nil {
		metrics = ports.NopLedgerMetrics{}
	}
	return &WriterUseCase{
		txRunner: txRunner,
		metrics:  metrics,
		log:      log,
		strict:   cfg.StrictMode,
		now:      time.Now,
	}
}

// StrictMode indica si el escritor rechaza duplicados al escribir.
func (uc *WriterUseCase) StrictMode() bool { return uc.strict }

// Mode etiqueta del modo de escritura (strict | lenient).
func (uc *WriterUseCase) Mode() string {
	if uc.strict {
		return ModeStrict
	}
	return ModeLenient
}

// RecordMultiMemberSale registra un renglón de bitácora por contribución, en el orden recibido.
// Todo ocurre en una transacción: si falla una contribución no queda ningún renglón escrito.
//
// Errores:
//   - domain.ErrReferenceNotFound    la orden, un lote o su producto no existen.
//   - domain.ErrDuplicateLedgerEntry (solo modo estricto) el lote se repite o ya tiene renglón.
//   - domain.ErrInvalidInput         cantidades o categoría inválidas.
func (uc *WriterUseCase) RecordMultiMemberSale(ctx context.Context, orderID string, contributions []Contribution) ([]*entity.AuditTrailEntry, error) {
	if orderID == "" || len(contributions) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var written []*entity.AuditTrailEntry

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		order, err := repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
		}
		written, err = uc.RecordInTx(ctx, repos, order, contributions, now)
		return err
	})
	if err != nil {
		uc.metrics.WriteFailed(FailureReason(err))
		uc.log.Warn().Err(err).
			Str("order_id", orderID).
			Int("contributions", len(contributions)).
			Str("mode", uc.Mode()).
			Msg("bitácora: venta multi-productor no registrada")
		return nil, err
	}

	uc.metrics.EntriesWritten(uc.Mode(), len(written))
	uc.log.Info().
		Str("order_id", orderID).
		Int("entries", len(written)).
		Str("mode", uc.Mode()).
		Msg("bitácora: venta multi-productor registrada")
	return written, nil
}

// RecordInTx escribe la bitácora usando los repositorios del caller (misma transacción).
// La usa la aprobación de órdenes, que descuenta stock y registra en un solo Commit.
// No emite métricas: las cuenta quien confirma la transacción.
func (uc *WriterUseCase) RecordInTx(
	ctx context.Context,
	repos ports.TxRepos,
	order *entity.Order,
	contributions []Contribution,
	now time.Time,
) ([]*entity.AuditTrailEntry, error) {
	if order == nil {
		return nil, domain.ErrReferenceNotFound
	}
	if err := uc.checkBatch(contributions); err != nil {
		return nil, err
	}

	entries := make([]*entity.AuditTrailEntry, 0, len(contributions))
	for _, c := range contributions {
		lot, err := repos.StockLots.GetByID(ctx, c.StockLotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrReferenceNotFound, c.StockLotID)
		}
		if c.ProductID != "" && c.ProductID != lot.ProductID {
			return nil, fmt.Errorf("%w: el lote %s no pertenece al producto %s", domain.ErrInvalidInput, lot.ID, c.ProductID)
		}
		product, err := repos.Products.GetByID(ctx, lot.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrReferenceNotFound, lot.ProductID)
		}

		category := c.Category
		if category == "" {
			category = lot.Category
		}
		if !category.IsValid() {
			return nil, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, category)
		}

		if uc.strict {
			exists, err := repos.AuditTrail.ExistsForOrderAndLot(ctx, order.ID, lot.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%w: orden %s, lote %s", domain.ErrDuplicateLedgerEntry, order.ID, lot.ID)
			}
		}

		entry := &entity.AuditTrailEntry{
			ID:                uuid.New().String(),
			OrderID:           order.ID,
			StockLotID:        lot.ID,
			ProducerID:        lot.ProducerID, // atribución congelada al momento de la venta
			ProductID:         product.ID,
			ProductName:       product.Name,
			Category:          category,
			Quantity:          c.Quantity,
			RemainingBefore:   c.RemainingBefore,
			Prices:            lot.Prices,
			ResolvedUnitPrice: lot.Prices.Resolve(category),
			StrictWrite:       uc.strict,
			CreatedAt:         now,
		}
		if err := repos.AuditTrail.Create(ctx, entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// checkBatch valida las contribuciones antes de tocar la BD.
func (uc *WriterUseCase) checkBatch(contributions []Contribution) error {
	if len(contributions) == 0 {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(contributions))
	for _, c := range contributions {
		if c.StockLotID == "" || !c.Quantity.GreaterThan(decimal.Zero) || c.RemainingBefore.IsNegative() {
			return domain.ErrInvalidInput
		}
		if !uc.strict {
			continue
		}
		if _, dup := seen[c.StockLotID]; dup {
			return fmt.Errorf("%w: lote %s repetido en la misma venta", domain.ErrDuplicateLedgerEntry, c.StockLotID)
		}
		seen[c.StockLotID] = struct{}{}
	}
	return nil
}

// FailureReason etiqueta corta del error para métricas.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrReferenceNotFound):
		return "reference_not_found"
	case errors.Is(err, domain.ErrDuplicateLedgerEntry):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "internal"
	}
}
