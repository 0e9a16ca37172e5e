package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/report"
)

// ReportHandler tablero de ingresos por productor.
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// MyRevenue lo vendido por el productor autenticado.
// GET /api/members/me/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ReportHandler) MyRevenue(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	return h.revenue(c, p.UserID)
}

// MemberRevenue lo vendido por un productor (backoffice).
// GET /api/members/:id/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ReportHandler) MemberRevenue(c *fiber.Ctx) error {
	producerID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	return h.revenue(c, producerID)
}

func (h *ReportHandler) revenue(c *fiber.Ctx, producerID string) error {
	p, _ := GetPrincipal(c)
	var in dto.MemberRevenueRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.MemberRevenue(c.Context(), p, producerID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
