package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Catalog datos maestros a cargar: SKUs, ubicaciones, activos, actores y tipos.
type Catalog struct {
	SKUs          []entity.SKU
	Locations     []entity.Location
	Assets        []entity.Asset
	Actors        []entity.Actor
	MovementTypes []entity.MovementType
}

// SeedCatalog inserta o actualiza el catálogo en una sola transacción (pgx.Batch).
// No toca saldos ni movimientos; el hash de PIN de un actor existente se conserva.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool, c Catalog) error {
	b := &pgx.Batch{}
	for _, s := range c.SKUs {
		b.Queue(`
			INSERT INTO skus (id, code, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name`,
			s.ID, s.Code, s.Name)
	}
	for _, l := range c.Locations {
		b.Queue(`
			INSERT INTO locations (id, name, active) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active`,
			l.ID, l.Name, l.Active)
	}
	for _, a := range c.Assets {
		b.Queue(`
			INSERT INTO assets (id, sku_id, serial, status) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET serial = EXCLUDED.serial`,
			a.ID, a.SKUID, a.Serial, nonEmptyStatus(a.Status))
	}
	for _, a := range c.Actors {
		b.Queue(`
			INSERT INTO actors (id, name, role, status) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role,
				status = EXCLUDED.status, updated_at = now()`,
			a.ID, a.Name, a.Role, a.Status)
	}
	for _, mt := range c.MovementTypes {
		b.Queue(`
			INSERT INTO movement_types (id, name, requires_approval, is_final_write_off, sets_asset_status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET requires_approval = EXCLUDED.requires_approval,
				is_final_write_off = EXCLUDED.is_final_write_off,
				sets_asset_status = EXCLUDED.sets_asset_status, updated_at = now()`,
			mt.ID, mt.Name, mt.RequiresApproval, mt.IsFinalWriteOff, nullString(mt.SetsAssetStatus))
	}
	if b.Len() == 0 {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("seed: batch: %w", mapError(err))
	}
	return tx.Commit(ctx)
}

func nonEmptyStatus(s string) string {
	if s == "" {
		return entity.AssetStatusRegistered
	}
	return s
}
