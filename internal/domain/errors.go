package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Bitácora multi-productor (audit trail).
	ErrReferenceNotFound    = errors.New("referencia no encontrada (orden, lote o producto)")
	ErrDuplicateLedgerEntry = errors.New("el lote ya tiene un registro en la bitácora de esta orden")

	// Ciclo de vida de la orden.
	ErrInvalidTransition = errors.New("transición de estado no permitida")

	// Bloqueo escalonado de login.
	ErrAccountLocked = errors.New("cuenta bloqueada temporalmente por intentos fallidos")
)
