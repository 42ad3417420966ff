// Package memory implementa los repositorios del ledger en memoria (tests y ejecución local).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Store guarda todo el estado en mapas. Cada transacción toma candados por fila (saldo,
// movimiento, solicitud, activo) que retiene hasta el fin y escribe sobre un overlay que se
// aplica en el commit; quien lee fuera de una transacción solo ve estado confirmado.
type Store struct {
	mu          sync.RWMutex
	locks       *rowLocks
	lockTimeout time.Duration

	skus      map[string]*entity.SKU
	locations map[string]*entity.Location
	assets    map[string]*entity.Asset
	actors    map[string]*entity.Actor
	types     map[string]*entity.MovementType

	balances      map[entity.BalanceKey]*entity.StockBalance
	movements     map[string]*entity.Movement
	movementOrder []string
	approvals     map[string]*entity.ApprovalRequest
	approvalOrder []string
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		locks:       newRowLocks(),
		lockTimeout: DefaultLockTimeout,
		skus:        make(map[string]*entity.SKU),
		locations:   make(map[string]*entity.Location),
		assets:      make(map[string]*entity.Asset),
		actors:      make(map[string]*entity.Actor),
		types:       make(map[string]*entity.MovementType),
		balances:    make(map[entity.BalanceKey]*entity.StockBalance),
		movements:   make(map[string]*entity.Movement),
		approvals:   make(map[string]*entity.ApprovalRequest),
	}
}

var _ inventory.TxRunner = (*Store)(nil)

// SetLockTimeout cambia la espera máxima por candado; d <= 0 deja DefaultLockTimeout.
func (s *Store) SetLockTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultLockTimeout
	}
	s.lockTimeout = d
}

// Run ejecuta fn en una transacción; si fn devuelve error el overlay se descarta.
// Los candados tomados se liberan siempre al salir.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := s.begin(ctx)
	defer t.release()

	if err := fn(t.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Repositorios fuera de transacción: lecturas de estado confirmado, escrituras en autocommit.

func (s *Store) Balances() *BalanceRepo           { return &BalanceRepo{s: s} }
func (s *Store) Movements() *MovementRepo         { return &MovementRepo{s: s} }
func (s *Store) Approvals() *ApprovalRepo         { return &ApprovalRepo{s: s} }
func (s *Store) Assets() *AssetRepo               { return &AssetRepo{s: s} }
func (s *Store) MovementTypes() *MovementTypeRepo { return &MovementTypeRepo{s: s} }
func (s *Store) Actors() *ActorRepo               { return &ActorRepo{s: s} }
func (s *Store) SKUs() *SKURepo                   { return &SKURepo{s: s} }
func (s *Store) Locations() *LocationRepo         { return &LocationRepo{s: s} }

// AddSKU registra un SKU en el catálogo.
func (s *Store) AddSKU(sku entity.SKU) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sku.CreatedAt.IsZero() {
		sku.CreatedAt = time.Now()
	}
	s.skus[sku.ID] = &sku
}

// AddLocation registra una ubicación.
func (s *Store) AddLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now()
	}
	s.locations[loc.ID] = &loc
}

// SetLocationActive activa o desactiva una ubicación.
func (s *Store) SetLocationActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc, ok := s.locations[id]; ok {
		loc.Active = active
	}
}

// AddAsset registra un activo serializado.
func (s *Store) AddAsset(a entity.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = &a
}

// AddActor registra un actor.
func (s *Store) AddActor(a entity.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[a.ID] = &a
}

// AddMovementType registra un tipo de movimiento.
func (s *Store) AddMovementType(mt entity.MovementType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[mt.ID] = &mt
}

// within ejecuta fn en la transacción tx o, si es nil, en una transacción propia (autocommit).
func (s *Store) within(ctx context.Context, tx *txn, fn func(t *txn) error) error {
	if tx != nil {
		return fn(tx)
	}
	t := s.begin(ctx)
	defer t.release()
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// view devuelve tx o una vista de solo lectura sobre el estado confirmado.
func (s *Store) view(tx *txn) *txn {
	if tx != nil {
		return tx
	}
	return &txn{s: s}
}

// txn overlay de una transacción en curso y candados que retiene.
type txn struct {
	s      *Store
	ctx    context.Context
	locked map[string]bool

	balances     map[entity.BalanceKey]*entity.StockBalance
	movements    map[string]*entity.Movement
	newMovements []string
	approvals    map[string]*entity.ApprovalRequest
	newApprovals []string
	assets       map[string]*entity.Asset
}

func (s *Store) begin(ctx context.Context) *txn {
	return &txn{
		s:         s,
		ctx:       ctx,
		locked:    make(map[string]bool),
		balances:  make(map[entity.BalanceKey]*entity.StockBalance),
		movements: make(map[string]*entity.Movement),
		approvals: make(map[string]*entity.ApprovalRequest),
		assets:    make(map[string]*entity.Asset),
	}
}

func (t *txn) repos() inventory.TxRepos {
	return inventory.TxRepos{
		Balances:      &BalanceRepo{s: t.s, tx: t},
		Movements:     &MovementRepo{s: t.s, tx: t},
		Approvals:     &ApprovalRepo{s: t.s, tx: t},
		Assets:        &AssetRepo{s: t.s, tx: t},
		SKUs:          t.s.SKUs(),
		Locations:     t.s.Locations(),
		MovementTypes: t.s.MovementTypes(),
	}
}

func (t *txn) commit() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range t.balances {
		s.balances[k] = b
	}
	for id, m := range t.movements {
		s.movements[id] = m
	}
	s.movementOrder = append(s.movementOrder, t.newMovements...)
	for id, r := range t.approvals {
		s.approvals[id] = r
	}
	s.approvalOrder = append(s.approvalOrder, t.newApprovals...)
	for id, a := range t.assets {
		s.assets[id] = a
	}
}

// lock toma el candado de la fila una sola vez por transacción.
func (t *txn) lock(key string) error {
	if t.locked[key] {
		return nil
	}
	if err := t.s.locks.acquire(t.ctx, key, t.s.lockTimeout); err != nil {
		return err
	}
	t.locked[key] = true
	return nil
}

func (t *txn) release() {
	for key := range t.locked {
		t.s.locks.release(key)
	}
	t.locked = nil
}

func (t *txn) balance(k entity.BalanceKey) (*entity.StockBalance, bool) {
	if b, ok := t.balances[k]; ok {
		return b, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	b, ok := t.s.balances[k]
	return b, ok
}

func (t *txn) movement(id string) (*entity.Movement, bool) {
	if m, ok := t.movements[id]; ok {
		return m, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	m, ok := t.s.movements[id]
	return m, ok
}

func (t *txn) approval(id string) (*entity.ApprovalRequest, bool) {
	if r, ok := t.approvals[id]; ok {
		return r, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	r, ok := t.s.approvals[id]
	return r, ok
}

func (t *txn) asset(id string) (*entity.Asset, bool) {
	if a, ok := t.assets[id]; ok {
		return a, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	a, ok := t.s.assets[id]
	return a, ok
}
