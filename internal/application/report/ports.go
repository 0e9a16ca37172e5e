package report

import (
	"context"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/ledger"
)

// SummaryPDFGenerator genera la representación en PDF del resumen por productor de una orden.
// La implementación (maroto) vive en infraestructura.
type SummaryPDFGenerator interface {
	GenerateOrderSummaryPDF(ctx context.Context, order *entity.Order, summary *ledger.OrderSummary) ([]byte, error)
}

// OrderSummarizer resumen de la bitácora por orden (audittrail.SummaryUseCase).
type OrderSummarizer interface {
	Summarize(ctx context.Context, orderID string) (*ledger.OrderSummary, error)
}
