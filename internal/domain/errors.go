package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInvalidSecret        = errors.New("PIN inválido")
	ErrApprovalRequired     = errors.New("el tipo de movimiento requiere aprobación")
	ErrAlreadyProcessed     = errors.New("la solicitud ya fue procesada")
	ErrAlreadyReverted      = errors.New("el movimiento ya fue revertido")
	ErrWrongType            = errors.New("tipo de solicitud incorrecto")
	ErrSelfApproval         = errors.New("el solicitante no puede aprobar su propia solicitud")
	ErrConfigurationMissing = errors.New("configuración faltante")
	ErrInUse                = errors.New("recurso en uso")
)

// ErrActorNotFound es un ErrInvalidSecret: quien llama no distingue si el actor existe.
var ErrActorNotFound = fmt.Errorf("%w: actor no encontrado", ErrInvalidSecret)

// InsufficientStockError lleva la cantidad disponible para que el cliente ajuste su pedido.
type InsufficientStockError struct {
	SKUID      string
	LocationID string
	Available  int64
	Requested  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s en %s: disponible %d, solicitado %d",
		e.SKUID, e.LocationID, e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NewInsufficientStock construye el error estructurado.
func NewInsufficientStock(skuID, locationID string, available, requested int64) error {
	return &InsufficientStockError{
		SKUID:      skuID,
		LocationID: locationID,
		Available:  available,
		Requested:  requested,
	}
}

// AvailableStock extrae la cantidad disponible de un error de stock insuficiente.
func AvailableStock(err error) (int64, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise.Available, true
	}
	return 0, false
}
