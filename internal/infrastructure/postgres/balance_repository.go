package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `sku_id, location_id, quantity, updated_at`

// Get obtiene el saldo actual; 0 si el par nunca tuvo movimientos.
func (r *BalanceRepo) Get(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE sku_id = $1 AND location_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, skuID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{SKUID: skuID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Si no existe la crea en 0 para tener
// algo que bloquear: dos salidas concurrentes sobre un par nuevo también se serializan.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (sku_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (sku_id, location_id) DO NOTHING`, skuID, locationID)
	if err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE sku_id = $1 AND location_id = $2 FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, skuID, locationID))
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Increment suma qty creando la fila si no existe (upsert atómico).
func (r *BalanceRepo) Increment(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error) {
	query := `
		INSERT INTO stock_balances (sku_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku_id, location_id)
		DO UPDATE SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query, skuID, locationID, qty, at))
	if err != nil {
		return nil, mapError(fmt.Errorf("increment balance: %w", err))
	}
	return b, nil
}

// Decrement resta qty solo si alcanza; si no, devuelve *domain.InsufficientStockError.
func (r *BalanceRepo) Decrement(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error) {
	query := `
		UPDATE stock_balances SET quantity = quantity - $3, updated_at = $4
		WHERE sku_id = $1 AND location_id = $2 AND quantity >= $3
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query, skuID, locationID, qty, at))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("decrement balance: %w", err)
	}
	current, err := r.Get(ctx, skuID, locationID)
	if err != nil {
		return nil, err
	}
	return nil, domain.NewInsufficientStock(skuID, locationID, current.Quantity, qty)
}

// List saldos filtrados por SKU y/o ubicación, ordenados por SKU y ubicación.
func (r *BalanceRepo) List(ctx context.Context, f repository.BalanceFilter) ([]*entity.StockBalance, error) {
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
		where = append(where, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if !f.IncludeZero {
		where = append(where, "quantity <> 0")
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sku_id, location_id"
	query, args = appendPage(query, args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := row.Scan(&b.SKUID, &b.LocationID, &b.Quantity, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// appendPage agrega LIMIT/OFFSET parametrizados.
func appendPage(query string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}
