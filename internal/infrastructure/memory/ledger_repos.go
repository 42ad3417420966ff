package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var (
	_ repository.BalanceRepository  = (*BalanceRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.ApprovalRepository = (*ApprovalRepo)(nil)
	_ repository.AssetRepository    = (*AssetRepo)(nil)
)

// BalanceRepo saldos por (sku, ubicación).
type BalanceRepo struct {
	s  *Store
	tx *txn
}

func (r *BalanceRepo) Get(_ context.Context, skuID, locationID string) (*entity.StockBalance, error) {
	k := entity.BalanceKey{SKUID: skuID, LocationID: locationID}
	if b, ok := r.s.view(r.tx).balance(k); ok {
		cp := *b
		return &cp, nil
	}
	return &entity.StockBalance{SKUID: skuID, LocationID: locationID}, nil
}

// GetForUpdate bloquea la fila del par hasta el fin de la transacción.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockBalance, error) {
	if r.tx != nil {
		if err := r.tx.lock(balanceLock(entity.BalanceKey{SKUID: skuID, LocationID: locationID})); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, skuID, locationID)
}

func (r *BalanceRepo) Increment(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.s.within(ctx, r.tx, func(t *txn) error {
		k := entity.BalanceKey{SKUID: skuID, LocationID: locationID}
		if err := t.lock(balanceLock(k)); err != nil {
			return err
		}
		next := entity.StockBalance{SKUID: skuID, LocationID: locationID}
		if b, ok := t.balance(k); ok {
			next = *b
		}
		if !domaininv.CanIncrement(next.Quantity, qty) {
			return fmt.Errorf("%w: el saldo de %s en %s excede el máximo", domain.ErrInvalidInput, skuID, locationID)
		}
		next.Quantity += qty
		next.UpdatedAt = at
		t.balances[k] = &next
		cp := next
		out = &cp
		return nil
	})
	return out, err
}

func (r *BalanceRepo) Decrement(ctx context.Context, skuID, locationID string, qty int64, at time.Time) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.s.within(ctx, r.tx, func(t *txn) error {
		k := entity.BalanceKey{SKUID: skuID, LocationID: locationID}
		if err := t.lock(balanceLock(k)); err != nil {
			return err
		}
		next := entity.StockBalance{SKUID: skuID, LocationID: locationID}
		if b, ok := t.balance(k); ok {
			next = *b
		}
		if next.Quantity < qty {
			return domain.NewInsufficientStock(skuID, locationID, next.Quantity, qty)
		}
		next.Quantity -= qty
		next.UpdatedAt = at
		t.balances[k] = &next
		cp := next
		out = &cp
		return nil
	})
	return out, err
}

func (r *BalanceRepo) List(_ context.Context, f repository.BalanceFilter) ([]*entity.StockBalance, error) {
	t := r.s.view(r.tx)
	keys := make(map[entity.BalanceKey]struct{})
	r.s.mu.RLock()
	for k := range r.s.balances {
		keys[k] = struct{}{}
	}
	r.s.mu.RUnlock()
	for k := range t.balances {
		keys[k] = struct{}{}
	}

	var out []*entity.StockBalance
	for k := range keys {
		if f.SKUID != "" && k.SKUID != f.SKUID {
			continue
		}
		if f.LocationID != "" && k.LocationID != f.LocationID {
			continue
		}
		b, _ := t.balance(k)
		if b.Quantity == 0 && !f.IncludeZero {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SKUID != out[j].SKUID {
			return out[i].SKUID < out[j].SKUID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return page(out, f.Limit, f.Offset), nil
}

// MovementRepo ledger de movimientos (solo inserción).
type MovementRepo struct {
	s  *Store
	tx *txn
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.s.within(ctx, r.tx, func(t *txn) error {
		if err := t.lock(movementLock(m.ID)); err != nil {
			return err
		}
		if _, ok := t.movement(m.ID); ok {
			return domain.ErrDuplicate
		}
		cp := *m
		t.movements[m.ID] = &cp
		t.newMovements = append(t.newMovements, m.ID)
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	m, ok := r.s.view(r.tx).movement(id)
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	if r.tx != nil {
		if err := r.tx.lock(movementLock(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) MarkReverted(ctx context.Context, id, reversalID string) error {
	return r.s.within(ctx, r.tx, func(t *txn) error {
		if err := t.lock(movementLock(id)); err != nil {
			return err
		}
		m, ok := t.movement(id)
		if !ok {
			return domain.ErrNotFound
		}
		if m.RevertedByMovementID != "" {
			return domain.ErrAlreadyReverted
		}
		cp := *m
		cp.RevertedByMovementID = reversalID
		t.movements[id] = &cp
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	t := r.s.view(r.tx)
	r.s.mu.RLock()
	ids := append([]string(nil), r.s.movementOrder...)
	r.s.mu.RUnlock()
	ids = append(ids, t.newMovements...)

	var out []*entity.Movement
	for i := len(ids) - 1; i >= 0; i-- {
		m, ok := t.movement(ids[i])
		if !ok || !matchMovement(m, f) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

func (r *MovementRepo) CountByType(_ context.Context, movementTypeID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.movements {
		if m.MovementTypeID == movementTypeID {
			n++
		}
	}
	return n, nil
}

func matchMovement(m *entity.Movement, f repository.MovementFilter) bool {
	if f.SKUID != "" && m.SKUID != f.SKUID {
		return false
	}
	if f.LocationID != "" && m.FromLocationID != f.LocationID && m.ToLocationID != f.LocationID {
		return false
	}
	if f.MovementTypeID != "" && m.MovementTypeID != f.MovementTypeID {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// ApprovalRepo solicitudes de aprobación.
type ApprovalRepo struct {
	s  *Store
	tx *txn
}

func (r *ApprovalRepo) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	return r.s.within(ctx, r.tx, func(t *txn) error {
		if err := t.lock(approvalLock(req.ID)); err != nil {
			return err
		}
		if _, ok := t.approval(req.ID); ok {
			return domain.ErrDuplicate
		}
		t.approvals[req.ID] = cloneRequest(req)
		t.newApprovals = append(t.newApprovals, req.ID)
		return nil
	})
}

func (r *ApprovalRepo) GetByID(_ context.Context, id string) (*entity.ApprovalRequest, error) {
	req, ok := r.s.view(r.tx).approval(id)
	if !ok {
		return nil, nil
	}
	return cloneRequest(req), nil
}

func (r *ApprovalRepo) GetForUpdate(ctx context.Context, id string) (*entity.ApprovalRequest, error) {
	if r.tx != nil {
		if err := r.tx.lock(approvalLock(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *ApprovalRepo) Transition(ctx context.Context, tr repository.Transition) error {
	return r.s.within(ctx, r.tx, func(t *txn) error {
		if err := t.lock(approvalLock(tr.RequestID)); err != nil {
			return err
		}
		req, ok := t.approval(tr.RequestID)
		if !ok {
			return domain.ErrNotFound
		}
		if !req.IsPending() {
			return domain.ErrAlreadyProcessed
		}
		next := cloneRequest(req)
		at := tr.At
		next.Status = tr.To
		next.ApprovedByID = tr.DecidedByID
		next.ResultMovementID = tr.ResultMovementID
		next.DecidedAt = &at
		t.approvals[tr.RequestID] = next
		return nil
	})
}

func (r *ApprovalRepo) ListByStatus(_ context.Context, status entity.RequestStatus, limit, offset int) ([]*entity.ApprovalRequest, error) {
	t := r.s.view(r.tx)
	r.s.mu.RLock()
	ids := append([]string(nil), r.s.approvalOrder...)
	r.s.mu.RUnlock()
	ids = append(ids, t.newApprovals...)

	var out []*entity.ApprovalRequest
	for _, id := range ids {
		req, ok := t.approval(id)
		if !ok || req.Status != status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func cloneRequest(r *entity.ApprovalRequest) *entity.ApprovalRequest {
	cp := *r
	if r.Exit != nil {
		e := *r.Exit
		cp.Exit = &e
	}
	if r.Reversal != nil {
		v := *r.Reversal
		cp.Reversal = &v
	}
	if r.DecidedAt != nil {
		d := *r.DecidedAt
		cp.DecidedAt = &d
	}
	return &cp
}

// AssetRepo activos serializados; el cambio de estado es transaccional.
type AssetRepo struct {
	s  *Store
	tx *txn
}

func (r *AssetRepo) GetByID(_ context.Context, id string) (*entity.Asset, error) {
	a, ok := r.s.view(r.tx).asset(id)
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// GetForUpdate bloquea el activo hasta el fin de la transacción.
func (r *AssetRepo) GetForUpdate(ctx context.Context, id string) (*entity.Asset, error) {
	if r.tx != nil {
		if err := r.tx.lock(assetLock(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *AssetRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	return r.s.within(ctx, r.tx, func(t *txn) error {
		if err := t.lock(assetLock(id)); err != nil {
			return err
		}
		a, ok := t.asset(id)
		if !ok {
			return domain.ErrNotFound
		}
		cp := *a
		cp.Status = status
		cp.UpdatedAt = at
		t.assets[id] = &cp
		return nil
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
