package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var (
	_ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
	_ repository.ActorRepository        = (*ActorRepo)(nil)
	_ repository.SKURepository          = (*SKURepo)(nil)
	_ repository.LocationRepository     = (*LocationRepo)(nil)
)

// MovementTypeRepo tipos de movimiento.
type MovementTypeRepo struct{ s *Store }

func (r *MovementTypeRepo) Create(_ context.Context, mt *entity.MovementType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.types {
		if existing.Name == mt.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *mt
	r.s.types[mt.ID] = &cp
	return nil
}

func (r *MovementTypeRepo) GetByID(_ context.Context, id string) (*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	mt, ok := r.s.types[id]
	if !ok {
		return nil, nil
	}
	cp := *mt
	return &cp, nil
}

func (r *MovementTypeRepo) GetByName(_ context.Context, name string) (*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, mt := range r.s.types {
		if mt.Name == name {
			cp := *mt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementTypeRepo) Update(_ context.Context, mt *entity.MovementType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.types[mt.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.types {
		if existing.Name == mt.Name && existing.ID != mt.ID {
			return domain.ErrDuplicate
		}
	}
	cp := *mt
	r.s.types[mt.ID] = &cp
	return nil
}

func (r *MovementTypeRepo) List(_ context.Context) ([]*entity.MovementType, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.MovementType, 0, len(r.s.types))
	for _, mt := range r.s.types {
		cp := *mt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MovementTypeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.types[id]; !ok {
		return domain.ErrNotFound
	}
	for _, m := range r.s.movements {
		if m.MovementTypeID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.types, id)
	return nil
}

// ActorRepo actores y hashes de PIN.
type ActorRepo struct{ s *Store }

func (r *ActorRepo) GetByID(_ context.Context, id string) (*entity.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.actors[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *ActorRepo) UpdatePINHash(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.actors[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *a
	cp.PINHash = hash
	r.s.actors[id] = &cp
	return nil
}

func (r *ActorRepo) ListPINHashes(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, a := range r.s.actors {
		if a.PINHash != "" {
			out = append(out, a.PINHash)
		}
	}
	return out, nil
}

// SKURepo catálogo de SKUs.
type SKURepo struct{ s *Store }

func (r *SKURepo) GetByID(_ context.Context, id string) (*entity.SKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sku, ok := r.s.skus[id]
	if !ok {
		return nil, nil
	}
	cp := *sku
	return &cp, nil
}

// LocationRepo ubicaciones.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	loc, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}
