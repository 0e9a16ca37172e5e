package audittrail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/ledger"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// ValidatorUseCase concilia la bitácora de una orden contra los productores esperados.
// Se invoca, por ejemplo, antes de liberar pagos a los productores.
type ValidatorUseCase struct {
	orderRepo repository.OrderRepository
	auditRepo repository.AuditTrailRepository
	metrics   ports.LedgerMetrics
	log       zerolog.Logger
}

// NewValidatorUseCase construye el caso de uso. metrics puede ser nil.
func NewValidatorUseCase(
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditTrailRepository,
	metrics ports.LedgerMetrics,
	log zerolog.Logger,
) *ValidatorUseCase {
	if metrics == nil {
		metrics = ports.NopLedgerMetrics{}
	}
	return &ValidatorUseCase{orderRepo: orderRepo, auditRepo: auditRepo, metrics: metrics, log: log}
}

// Validate devuelve el resultado de la conciliación. Una bitácora incompleta no es un error:
// el caller decide si bloquea el pago. Solo falla si la orden no existe o la BD falla.
func (uc *ValidatorUseCase) Validate(ctx context.Context, orderID string, expectedProducerIDs []string) (*ledger.ValidationResult, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
	}

	entries, err := uc.auditRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("validar bitácora: %w", err)
	}
	result := ledger.Reconcile(orderID, entries, expectedProducerIDs)

	uc.metrics.ValidationRun(result.IsComplete, len(result.DuplicateEntries))
	if len(result.DuplicateEntries) > 0 {
		dups := zerolog.Arr()
		for _, d := range result.DuplicateEntries {
			dups.Dict(zerolog.Dict().
				Str("producer_id", d.ProducerID).
				Str("stock_lot_id", d.StockLotID).
				Int("count", d.Count))
		}
		uc.log.Warn().
			Str("order_id", orderID).
			Int("duplicate_pairs", len(result.DuplicateEntries)).
			Array("duplicates", dups).
			Msg("bitácora: registros duplicados (orden, lote)")
	}
	if !result.IsComplete {
		uc.log.Info().
			Str("order_id", orderID).
			Strs("missing", result.MissingProducers).
			Strs("extra", result.ExtraProducers).
			Msg("bitácora: conciliación incompleta")
	}
	return result, nil
}
