package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/inventory"
)

// StockLotHandler lotes de stock del productor autenticado.
type StockLotHandler struct {
	uc *inventory.StockLotUseCase
}

// NewStockLotHandler construye el handler.
func NewStockLotHandler(uc *inventory.StockLotUseCase) *StockLotHandler {
	return &StockLotHandler{uc: uc}
}

// Register da de alta un lote del miembro.
// POST /api/members/me/stock-lots
func (h *StockLotHandler) Register(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	var in dto.RegisterStockLotRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.RegisterLot(c.Context(), p, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMine lotes del miembro.
// GET /api/members/me/stock-lots?limit=&offset=
func (h *StockLotHandler) ListMine(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return badRequest(c, "VALIDATION", validationMessage(err))
	}
	items, err := h.uc.ListMine(c.Context(), p, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
