package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// MovementTypeRepository define el puerto de persistencia para MovementType.
type MovementTypeRepository interface {
	Create(ctx context.Context, mt *entity.MovementType) error
	GetByID(ctx context.Context, id string) (*entity.MovementType, error)
	GetByName(ctx context.Context, name string) (*entity.MovementType, error)
	Update(ctx context.Context, mt *entity.MovementType) error
	List(ctx context.Context) ([]*entity.MovementType, error)
	Delete(ctx context.Context, id string) error
}
