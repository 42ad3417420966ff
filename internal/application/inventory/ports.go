package inventory

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD. Las lecturas de catálogo
// dentro de una tx usan la misma conexión que las escrituras.
type TxRepos struct {
	Balances      repository.BalanceRepository
	Movements     repository.MovementRepository
	Approvals     repository.ApprovalRepository
	Assets        repository.AssetRepository
	SKUs          repository.SKURepository
	Locations     repository.LocationRepository
	MovementTypes repository.MovementTypeRepository
}

// catalog lecturas de referencia que usa la validación.
type catalog struct {
	skus      repository.SKURepository
	locations repository.LocationRepository
	assets    repository.AssetRepository
	types     repository.MovementTypeRepository
}

func (r Repositories) catalog() catalog {
	return catalog{skus: r.SKUs, locations: r.Locations, assets: r.Assets, types: r.MovementTypes}
}

func (r TxRepos) catalog() catalog {
	return catalog{skus: r.SKUs, locations: r.Locations, assets: r.Assets, types: r.MovementTypes}
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback completo: nunca queda un movimiento sin su saldo.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// Authorizer valida el PIN del actor antes de cualquier mutación.
type Authorizer interface {
	Authorize(ctx context.Context, actorID, pin string) error
}
