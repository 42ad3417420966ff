package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// BalanceFilter filtros para listar saldos (lectura, fuera de la ruta crítica).
type BalanceFilter struct {
	SKUID       string
	LocationID  string
	IncludeZero bool
	Limit       int
	Offset      int
}

// BalanceRepository define el puerto para el saldo por (sku, ubicación).
// Increment/Decrement solo se invocan desde las transacciones del ledger.
type BalanceRepository interface {
	// Get devuelve el saldo; si no existe fila devuelve cantidad 0.
	Get(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error)
	// Increment suma qty creando la fila si no existe (upsert).
	Increment(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error)
	// Decrement resta qty; devuelve *domain.InsufficientStockError si el saldo quedaría negativo.
	Decrement(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error)
	List(ctx context.Context, filter BalanceFilter) ([]*entity.StockBalance, error)
}
