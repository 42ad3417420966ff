package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// DefaultLockTimeout espera máxima por un candado de fila.
const DefaultLockTimeout = 5 * time.Second

// rowLocks candados exclusivos por fila. Cada candado es un semáforo de capacidad 1;
// filas distintas nunca se bloquean entre sí.
type rowLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newRowLocks() *rowLocks {
	return &rowLocks{slots: make(map[string]chan struct{})}
}

func (l *rowLocks) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// acquire espera el candado; al vencer timeout devuelve domain.ErrConflict.
func (l *rowLocks) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: lock timeout en %s", domain.ErrConflict, key)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *rowLocks) release(key string) {
	<-l.slot(key)
}

func balanceLock(k entity.BalanceKey) string { return "balance:" + k.SKUID + "|" + k.LocationID }
func movementLock(id string) string          { return "movement:" + id }
func approvalLock(id string) string          { return "approval:" + id }
func assetLock(id string) string             { return "asset:" + id }
