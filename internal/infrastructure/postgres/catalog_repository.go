package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var (
	_ repository.SKURepository      = (*SKURepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.AssetRepository    = (*AssetRepo)(nil)
)

// SKURepo lectura del catálogo de SKUs.
type SKURepo struct{ q Querier }

func NewSKURepository(q Querier) *SKURepo { return &SKURepo{q: q} }

func (r *SKURepo) GetByID(ctx context.Context, id string) (*entity.SKU, error) {
	var s entity.SKU
	err := r.q.QueryRow(ctx, `SELECT id, code, name, created_at FROM skus WHERE id = $1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sku: %w", err)
	}
	return &s, nil
}

// LocationRepo lectura de ubicaciones.
type LocationRepo struct{ q Querier }

func NewLocationRepository(q Querier) *LocationRepo { return &LocationRepo{q: q} }

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, name, active, created_at FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Active, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// AssetRepo activos serializados (usable con pool o tx).
type AssetRepo struct{ q Querier }

func NewAssetRepository(q Querier) *AssetRepo { return &AssetRepo{q: q} }

const assetSelect = `SELECT id, sku_id, serial, status, updated_at FROM assets WHERE id = $1`

func (r *AssetRepo) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	return r.get(ctx, assetSelect, id)
}

// GetForUpdate SELECT ... FOR UPDATE; solo tiene efecto con un Querier de transacción.
func (r *AssetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Asset, error) {
	return r.get(ctx, assetSelect+` FOR UPDATE`, id)
}

func (r *AssetRepo) get(ctx context.Context, query, id string) (*entity.Asset, error) {
	var a entity.Asset
	err := r.q.QueryRow(ctx, query, id).Scan(&a.ID, &a.SKUID, &a.Serial, &a.Status, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return &a, nil
}

func (r *AssetRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
