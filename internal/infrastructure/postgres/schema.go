package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// schema crea las tablas del ledger si no existen. Los CHECK replican las invariantes
// del dominio: saldo nunca negativo, cantidad positiva, al menos una ubicación, reversión única.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS skus (
		id         TEXT PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		active     BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id         TEXT PRIMARY KEY,
		sku_id     TEXT NOT NULL REFERENCES skus(id),
		serial     TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'REGISTERED',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (sku_id, serial)
	)`,
	`CREATE TABLE IF NOT EXISTS actors (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL CHECK (role IN ('admin', 'supervisor', 'bodeguero')),
		pin_hash   TEXT,
		status     TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS movement_types (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL UNIQUE,
		requires_approval  BOOLEAN NOT NULL DEFAULT false,
		is_final_write_off BOOLEAN NOT NULL DEFAULT false,
		sets_asset_status  TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS stock_balances (
		sku_id      TEXT NOT NULL REFERENCES skus(id),
		location_id TEXT NOT NULL REFERENCES locations(id),
		quantity    BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (sku_id, location_id)
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id                      TEXT PRIMARY KEY,
		movement_type_id        TEXT NOT NULL REFERENCES movement_types(id) ON DELETE RESTRICT,
		sku_id                  TEXT NOT NULL REFERENCES skus(id),
		quantity                BIGINT NOT NULL CHECK (quantity > 0),
		from_location_id        TEXT REFERENCES locations(id),
		to_location_id          TEXT REFERENCES locations(id),
		actor_id                TEXT NOT NULL REFERENCES actors(id),
		reason                  TEXT,
		asset_id                TEXT REFERENCES assets(id),
		reverted_by_movement_id TEXT UNIQUE REFERENCES movements(id),
		reversal_of_movement_id TEXT UNIQUE REFERENCES movements(id),
		created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (from_location_id IS NOT NULL OR to_location_id IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_sku_created ON movements (sku_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_from ON movements (from_location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_to ON movements (to_location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_type ON movements (movement_type_id)`,
	`CREATE TABLE IF NOT EXISTS approval_requests (
		id                 TEXT PRIMARY KEY,
		request_type       TEXT NOT NULL CHECK (request_type IN ('EXIT_APPROVAL', 'REVERSAL')),
		status             TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
		requested_by_id    TEXT NOT NULL REFERENCES actors(id),
		approved_by_id     TEXT REFERENCES actors(id),
		reason             TEXT,
		payload            JSONB NOT NULL,
		result_movement_id TEXT REFERENCES movements(id),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		decided_at         TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_approval_requests_pending ON approval_requests (created_at) WHERE status = 'PENDING'`,
}

// Migrate aplica el esquema en una transacción.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: sentencia %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}

// SeedMovementTypes asegura que existan los tipos de entrada y de reversión configurados.
func SeedMovementTypes(ctx context.Context, q Querier, names ...string) error {
	now := time.Now()
	for _, name := range names {
		if name == "" {
			continue
		}
		mt := &entity.MovementType{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
		if err := EnsureMovementType(ctx, q, mt); err != nil {
			return err
		}
	}
	return nil
}
