package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetBalance saldo actual de un par; 0 si nunca hubo movimientos.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error) {
	if skuID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.repos.Balances.Get(ctx, skuID, locationID)
}

// ListBalances saldos filtrados por SKU y/o ubicación; por defecto omite los saldos en cero.
func (uc *LedgerUseCase) ListBalances(ctx context.Context, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.repos.Balances.List(ctx, filter)
}

// ListMovements historial filtrable por SKU, ubicación, tipo y fechas (más recientes primero).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.repos.Movements.List(ctx, filter)
}

// GetMovement obtiene un movimiento por ID.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := uc.repos.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener movimiento: %w", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// MovementType obtiene el tipo de un movimiento (para presentación).
func (uc *LedgerUseCase) MovementType(ctx context.Context, id string) (*entity.MovementType, error) {
	mt, err := uc.repos.MovementTypes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener tipo de movimiento: %w", err)
	}
	if mt == nil {
		return nil, domain.ErrNotFound
	}
	return mt, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
