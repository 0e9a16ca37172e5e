// Package report contiene los reportes construidos sobre la bitácora multi-productor:
// PDF del resumen por orden e ingresos por productor.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// ReportUseCase reportes de solo lectura.
type ReportUseCase struct {
	orderRepo  repository.OrderRepository
	auditRepo  repository.AuditTrailRepository
	summarizer OrderSummarizer
	generator  SummaryPDFGenerator
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditTrailRepository,
	summarizer OrderSummarizer,
	generator SummaryPDFGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		orderRepo:  orderRepo,
		auditRepo:  auditRepo,
		summarizer: summarizer,
		generator:  generator,
		now:        time.Now,
	}
}

// OrderSummaryPDF genera el PDF del resumen por productor de la orden.
//
// Retorna:
//   - (pdfBytes, filename, nil)    si todo sale bien.
//   - domain.ErrForbidden          si el principal no es admin ni staff.
//   - domain.ErrReferenceNotFound  si la orden no existe.
func (uc *ReportUseCase) OrderSummaryPDF(ctx context.Context, p auth.Principal, orderID string) (pdfBytes []byte, filename string, err error) {
	if !p.IsBackoffice() {
		return nil, "", domain.ErrForbidden
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener orden: %w", err)
	}
	if order == nil {
		return nil, "", fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
	}
	summary, err := uc.summarizer.Summarize(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateOrderSummaryPDF(ctx, order, summary)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("resumen_orden_%s.pdf", order.ID), nil
}

// MemberRevenue ingresos de un productor en el período (solo órdenes aprobadas).
// Un miembro solo puede consultar los suyos; admin y staff los de cualquiera.
func (uc *ReportUseCase) MemberRevenue(ctx context.Context, p auth.Principal, producerID string, req dto.MemberRevenueRequest) (*dto.MemberRevenueDTO, error) {
	switch {
	case p.IsBackoffice():
	case p.HasRole(entity.RoleMember) && p.UserID == producerID:
	default:
		return nil, domain.ErrForbidden
	}
	if producerID == "" {
		return nil, domain.ErrInvalidInput
	}
	start, end, err := parsePeriod(req.From, req.To, uc.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	rev, err := uc.auditRepo.RevenueByProducer(ctx, producerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ingresos por productor: %w", err)
	}
	out := &dto.MemberRevenueDTO{
		ProducerID: producerID,
		Period: dto.PeriodDTO{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Add(-time.Nanosecond).Format("2006-01-02"),
		},
		QuantitySold: decimal.Zero,
		Revenue:      decimal.Zero,
	}
	if rev != nil {
		out.OrderCount = rev.OrderCount
		out.EntryCount = rev.EntryCount
		out.QuantitySold = rev.QuantitySold
		out.Revenue = rev.Revenue.Round(2)
	}
	return out, nil
}

// parsePeriod convierte las fechas YYYY-MM-DD en [start, end) con end exclusivo.
// Por defecto: primer día del mes actual hasta hoy inclusive.
func parsePeriod(fromStr, toStr string, now time.Time) (start, end time.Time, err error) {
	if toStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		end, err = time.ParseInLocation("2006-01-02", toStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to inválido: %w", err)
		}
	}
	end = end.AddDate(0, 0, 1) // inclusive hasta el final del día

	if fromStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", fromStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from inválido: %w", err)
		}
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("from no puede ser posterior a to")
	}
	return start, end, nil
}
