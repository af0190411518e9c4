package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrConflict                 = errors.New("conflicto de concurrencia, reintentos agotados")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInsufficientAvailability = errors.New("disponibilidad insuficiente (stock reservado)")
	ErrInvalidRelease           = errors.New("liberación mayor a la cantidad reservada")
	ErrInvalidState             = errors.New("estado inválido para la operación")
	ErrMissingBOM               = errors.New("el producto no tiene BOM activo")
	ErrStockLevelMissing        = errors.New("no existe nivel de stock para el componente")
)
