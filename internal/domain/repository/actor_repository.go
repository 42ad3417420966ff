package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// ActorRepository puerto de lectura de actores y escritura del hash de PIN.
type ActorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Actor, error)
	UpdatePINHash(ctx context.Context, id, hash string) error
	// ListPINHashes devuelve los hashes vigentes (para generar PINs únicos).
	ListPINHashes(ctx context.Context) ([]string, error)
}
