package auth

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

const actorStatusActive = "active"

// PINAuthorizer valida el PIN de un actor contra su hash bcrypt.
// Si el actor no existe igual se ejecuta una comparación bcrypt sobre un hash ficticio,
// para que el tiempo de respuesta no revele la existencia del actor.
type PINAuthorizer struct {
	actors    repository.ActorRepository
	dummyHash []byte
}

// NewPINAuthorizer construye el autorizador. cost es el costo bcrypt del hash ficticio
// y debe coincidir con el usado al emitir PINs.
func NewPINAuthorizer(actors repository.ActorRepository, cost int) (*PINAuthorizer, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("auth: semilla de hash ficticio: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, normalizeCost(cost))
	if err != nil {
		return nil, fmt.Errorf("auth: hash ficticio: %w", err)
	}
	return &PINAuthorizer{actors: actors, dummyHash: dummy}, nil
}

// Authorize devuelve nil si el PIN corresponde al actor.
// Errores: domain.ErrActorNotFound (que también es domain.ErrInvalidSecret) o domain.ErrInvalidSecret.
func (a *PINAuthorizer) Authorize(ctx context.Context, actorID, pin string) error {
	if actorID == "" {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(pin))
		return domain.ErrActorNotFound
	}
	actor, err := a.actors.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("auth: obtener actor: %w", err)
	}
	if actor == nil || actor.PINHash == "" {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(pin))
		return domain.ErrActorNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PINHash), []byte(pin)); err != nil {
		return domain.ErrInvalidSecret
	}
	if actor.Status != actorStatusActive {
		return domain.ErrInvalidSecret
	}
	return nil
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}
