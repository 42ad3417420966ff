package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Los registros de catálogo, ubicaciones y activos son colaboradores externos:
// el ledger solo verifica existencia (nil, nil cuando no existe).

type SKURepository interface {
	GetByID(ctx context.Context, id string) (*entity.SKU, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}

type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Asset, error)
	// GetForUpdate bloquea el activo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Asset, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
}
