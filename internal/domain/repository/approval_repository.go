package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Transition describe el cambio de estado de una solicitud (compare-and-set sobre PENDING).
type Transition struct {
	RequestID        string
	To               entity.RequestStatus
	DecidedByID      string
	ResultMovementID string
	At               time.Time
}

// ApprovalRepository define el puerto de persistencia para ApprovalRequest.
type ApprovalRepository interface {
	Create(ctx context.Context, r *entity.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*entity.ApprovalRequest, error)
	// GetForUpdate bloquea la solicitud; las decisiones concurrentes se serializan aquí.
	GetForUpdate(ctx context.Context, id string) (*entity.ApprovalRequest, error)
	// Transition aplica el cambio solo si la solicitud sigue PENDING; si no, domain.ErrAlreadyProcessed.
	Transition(ctx context.Context, t Transition) error
	ListByStatus(ctx context.Context, status entity.RequestStatus, limit, offset int) ([]*entity.ApprovalRequest, error)
}
