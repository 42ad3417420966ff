package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.ActorRepository = (*ActorRepo)(nil)

// ActorRepo actores que operan el inventario y el hash de su PIN.
type ActorRepo struct {
	q Querier
}

// NewActorRepository construye el adaptador.
func NewActorRepository(q Querier) *ActorRepo {
	return &ActorRepo{q: q}
}

func (r *ActorRepo) GetByID(ctx context.Context, id string) (*entity.Actor, error) {
	var (
		a       entity.Actor
		pinHash *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, name, role, pin_hash, status, created_at, updated_at
		FROM actors WHERE id = $1`, id).Scan(
		&a.ID, &a.Name, &a.Role, &pinHash, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	a.PINHash = deref(pinHash)
	return &a, nil
}

func (r *ActorRepo) UpdatePINHash(ctx context.Context, id, hash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE actors SET pin_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update pin hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ActorRepo) ListPINHashes(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT pin_hash FROM actors WHERE pin_hash IS NOT NULL AND status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("list pin hashes: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan pin hash: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
