package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)

// MovementTypeRepo implementación de MovementTypeRepository sobre PostgreSQL.
type MovementTypeRepo struct {
	q Querier
}

// NewMovementTypeRepository construye el adaptador.
func NewMovementTypeRepository(q Querier) *MovementTypeRepo {
	return &MovementTypeRepo{q: q}
}

const movementTypeColumns = `id, name, requires_approval, is_final_write_off, sets_asset_status, created_at, updated_at`

func (r *MovementTypeRepo) Create(ctx context.Context, mt *entity.MovementType) error {
	query := `INSERT INTO movement_types (` + movementTypeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		mt.ID, mt.Name, mt.RequiresApproval, mt.IsFinalWriteOff, nullString(mt.SetsAssetStatus), mt.CreatedAt, mt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create movement type: %w", err)
	}
	return nil
}

func (r *MovementTypeRepo) GetByID(ctx context.Context, id string) (*entity.MovementType, error) {
	return r.get(ctx, `SELECT `+movementTypeColumns+` FROM movement_types WHERE id = $1`, id)
}

func (r *MovementTypeRepo) GetByName(ctx context.Context, name string) (*entity.MovementType, error) {
	return r.get(ctx, `SELECT `+movementTypeColumns+` FROM movement_types WHERE name = $1`, name)
}

func (r *MovementTypeRepo) get(ctx context.Context, query string, arg string) (*entity.MovementType, error) {
	mt, err := scanMovementType(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement type: %w", err)
	}
	return mt, nil
}

func (r *MovementTypeRepo) Update(ctx context.Context, mt *entity.MovementType) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE movement_types
		SET name = $2, requires_approval = $3, is_final_write_off = $4, sets_asset_status = $5, updated_at = $6
		WHERE id = $1`,
		mt.ID, mt.Name, mt.RequiresApproval, mt.IsFinalWriteOff, nullString(mt.SetsAssetStatus), mt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update movement type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementTypeRepo) List(ctx context.Context) ([]*entity.MovementType, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementTypeColumns+` FROM movement_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list movement types: %w", err)
	}
	defer rows.Close()
	var out []*entity.MovementType
	for rows.Next() {
		mt, err := scanMovementType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement type: %w", err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// Delete elimina el tipo; la FK de movements lo impide si está en uso (23503 -> ErrInUse).
func (r *MovementTypeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movement_types WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete movement type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureMovementType crea el tipo por nombre si no existe (arranque).
func EnsureMovementType(ctx context.Context, q Querier, mt *entity.MovementType) error {
	_, err := q.Exec(ctx, `
		INSERT INTO movement_types (`+movementTypeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING`,
		mt.ID, mt.Name, mt.RequiresApproval, mt.IsFinalWriteOff, nullString(mt.SetsAssetStatus), mt.CreatedAt, mt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ensure movement type %q: %w", mt.Name, err)
	}
	return nil
}

func scanMovementType(row pgx.Row) (*entity.MovementType, error) {
	var (
		mt        entity.MovementType
		setsAsset *string
	)
	if err := row.Scan(&mt.ID, &mt.Name, &mt.RequiresApproval, &mt.IsFinalWriteOff, &setsAsset, &mt.CreatedAt, &mt.UpdatedAt); err != nil {
		return nil, err
	}
	mt.SetsAssetStatus = deref(setsAsset)
	return &mt, nil
}
