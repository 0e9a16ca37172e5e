package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Agromercado-api/internal/application/audittrail"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/report"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// AuditTrailHandler escritura, validación y resúmenes de la bitácora multi-productor.
type AuditTrailHandler struct {
	writer    *audittrail.WriterUseCase
	validator *audittrail.ValidatorUseCase
	summary   *audittrail.SummaryUseCase
	report    *report.ReportUseCase
}

// NewAuditTrailHandler construye el handler.
func NewAuditTrailHandler(
	writer *audittrail.WriterUseCase,
	validator *audittrail.ValidatorUseCase,
	summary *audittrail.SummaryUseCase,
	reportUC *report.ReportUseCase,
) *AuditTrailHandler {
	return &AuditTrailHandler{writer: writer, validator: validator, summary: summary, report: reportUC}
}

// Record escribe los registros de una venta multi-productor.
// POST /api/orders/:id/audit-trail
func (h *AuditTrailHandler) Record(c *fiber.Ctx) error {
	orderID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var in dto.RecordSaleRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	contributions := make([]audittrail.Contribution, 0, len(in.Contributions))
	for _, ct := range in.Contributions {
		contributions = append(contributions, audittrail.Contribution{
			StockLotID:      ct.StockLotID,
			ProductID:       ct.ProductID,
			Category:        entity.Category(ct.Category),
			Quantity:        ct.Quantity,
			RemainingBefore: ct.RemainingBefore,
		})
	}
	entries, err := h.writer.RecordMultiMemberSale(c.Context(), orderID, contributions)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.RecordSaleResponse{
		OrderID: orderID,
		Mode:    h.writer.Mode(),
		Entries: make([]dto.AuditTrailEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryResponse(e))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Validate concilia la bitácora contra los productores esperados.
// POST /api/orders/:id/audit-trail/validate
func (h *AuditTrailHandler) Validate(c *fiber.Ctx) error {
	orderID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var in dto.ValidateAuditTrailRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.validator.Validate(c.Context(), orderID, in.ExpectedProducerIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Summary ingresos y cantidades de la orden por productor.
// GET /api/orders/:id/summary
func (h *AuditTrailHandler) Summary(c *fiber.Ctx) error {
	orderID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	s, err := h.summary.Summarize(c.Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// SummaryPDF resumen en PDF.
// GET /api/orders/:id/summary.pdf
func (h *AuditTrailHandler) SummaryPDF(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	orderID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	b, filename, err := h.report.OrderSummaryPDF(c.Context(), p, orderID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(b)
}

func toEntryResponse(e *entity.AuditTrailEntry) dto.AuditTrailEntryResponse {
	return dto.AuditTrailEntryResponse{
		ID:                e.ID,
		OrderID:           e.OrderID,
		StockLotID:        e.StockLotID,
		ProducerID:        e.ProducerID,
		ProductID:         e.ProductID,
		ProductName:       e.ProductName,
		Category:          string(e.Category),
		Quantity:          e.Quantity,
		RemainingBefore:   e.RemainingBefore,
		ResolvedUnitPrice: e.ResolvedUnitPrice,
		Revenue:           e.Revenue(),
		CreatedAt:         e.CreatedAt,
	}
}
