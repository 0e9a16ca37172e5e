package http

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/domain"
)

// errorMapping status y código HTTP de cada error de dominio.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrAccountLocked, fiber.StatusLocked, "ACCOUNT_LOCKED"},
	{domain.ErrReferenceNotFound, fiber.StatusNotFound, "REFERENCE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateLedgerEntry, fiber.StatusConflict, "DUPLICATE_LEDGER_ENTRY"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce err a dto.ErrorResponse. Errores no mapeados son 500 sin detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	var locked *auth.LockedError
	if errors.As(err, &locked) {
		secs := int(math.Ceil(time.Until(locked.Until).Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			msg := err.Error()
			if m.err == domain.ErrUnauthorized {
				msg = "credenciales inválidas"
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
