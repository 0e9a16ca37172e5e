package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/order"
)

// OrderHandler ciclo de vida de la orden.
type OrderHandler struct {
	uc *order.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Checkout crea una orden pending.
// POST /api/orders
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	var in dto.CheckoutRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Checkout(c.Context(), p, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMine órdenes del cliente autenticado.
// GET /api/orders?limit=&offset=
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
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

// Get detalle de la orden.
// GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.Get(c.Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve descuenta stock, escribe la bitácora y aprueba la orden.
// POST /api/orders/:id/approve
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	out, err := h.uc.Approve(c.Context(), p, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject rechaza la orden.
// POST /api/orders/:id/reject
func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var in dto.RejectOrderRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.Reject(c.Context(), p, id, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateDelivery avanza el estado de entrega.
// PATCH /api/orders/:id/delivery
func (h *OrderHandler) UpdateDelivery(c *fiber.Ctx) error {
	p, _ := GetPrincipal(c)
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var in dto.UpdateDeliveryRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateDelivery(c.Context(), p, id, in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
