package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	SKUID          string
	LocationID     string // coincide con origen o destino
	MovementTypeID string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// MovementRepository define el puerto de persistencia del ledger (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate bloquea el movimiento para serializar reversiones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	// MarkReverted asigna RevertedByMovementID solo si estaba vacío; si no, domain.ErrAlreadyReverted.
	MarkReverted(ctx context.Context, id, reversalID string) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	CountByType(ctx context.Context, movementTypeID string) (int, error)
}
