package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, movement_type_id, sku_id, quantity, from_location_id, to_location_id,
	actor_id, reason, asset_id, reverted_by_movement_id, reversal_of_movement_id, created_at`

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MovementTypeID, m.SKUID, m.Quantity,
		nullString(m.FromLocationID), nullString(m.ToLocationID),
		m.ActorID, nullString(m.Reason), nullString(m.AssetID),
		nullString(m.RevertedByMovementID), nullString(m.ReversalOfMovementID), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea la fila.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) get(ctx context.Context, query, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// MarkReverted asigna reverted_by_movement_id solo si sigue vacío (compare-and-set).
func (r *MovementRepo) MarkReverted(ctx context.Context, id, reversalID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE movements SET reverted_by_movement_id = $2
		WHERE id = $1 AND reverted_by_movement_id IS NULL`, id, reversalID)
	if err != nil {
		return fmt.Errorf("mark reverted: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM movements WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("mark reverted: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyReverted
}

// List historial filtrado, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var (
		where []string
		args  []any
	)
	if f.SKUID != "" {
		args = append(args, f.SKUID)
		where = append(where, fmt.Sprintf("sku_id = $%d", len(args)))
	}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		where = append(where, fmt.Sprintf("(from_location_id = $%d OR to_location_id = $%d)", len(args), len(args)))
	}
	if f.MovementTypeID != "" {
		args = append(args, f.MovementTypeID)
		where = append(where, fmt.Sprintf("movement_type_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	query := `SELECT ` + movementColumns + ` FROM movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	query, args = appendPage(query, args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountByType cantidad de movimientos que referencian el tipo.
func (r *MovementRepo) CountByType(ctx context.Context, movementTypeID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE movement_type_id = $1`, movementTypeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements by type: %w", err)
	}
	return n, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m                       entity.Movement
		from, to, reason, asset *string
		revertedBy, reversalOf  *string
	)
	err := row.Scan(
		&m.ID, &m.MovementTypeID, &m.SKUID, &m.Quantity, &from, &to,
		&m.ActorID, &reason, &asset, &revertedBy, &reversalOf, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.FromLocationID = deref(from)
	m.ToLocationID = deref(to)
	m.Reason = deref(reason)
	m.AssetID = deref(asset)
	m.RevertedByMovementID = deref(revertedBy)
	m.ReversalOfMovementID = deref(reversalOf)
	return &m, nil
}
