package audittrail

import (
	"context"
	"fmt"

	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/ledger"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// SummaryUseCase arma el resumen por orden y por productor que consumen reportes y tableros.
// Lee solo la bitácora (precios congelados); nunca el lote vivo.
type SummaryUseCase struct {
	orderRepo repository.OrderRepository
	auditRepo repository.AuditTrailRepository
	producers repository.ProducerDirectory
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditTrailRepository,
	producers repository.ProducerDirectory,
) *SummaryUseCase {
	return &SummaryUseCase{orderRepo: orderRepo, auditRepo: auditRepo, producers: producers}
}

// Summarize devuelve el resumen de la orden con el nombre de cada productor.
// Los nombres se resuelven en una sola consulta al directorio.
func (uc *SummaryUseCase) Summarize(ctx context.Context, orderID string) (*ledger.OrderSummary, error) {
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
		return nil, fmt.Errorf("resumen: listar bitácora: %w", err)
	}
	summary := ledger.Summarize(orderID, entries)
	if summary.ProducerCount == 0 {
		return summary, nil
	}

	names, err := uc.producers.GetByIDs(ctx, summary.ProducerIDs())
	if err != nil {
		return nil, fmt.Errorf("resumen: directorio de productores: %w", err)
	}
	for id, p := range summary.Producers {
		if producer, ok := names[id]; ok && producer != nil {
			p.ProducerName = producer.Name
		} else {
			p.ProducerName = "Productor " + id
		}
		summary.Producers[id] = p
	}
	return summary, nil
}
