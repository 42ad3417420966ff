package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// PINLength cantidad de dígitos del PIN.
const PINLength = 6

const maxPINAttempts = 5

// ErrPINSpaceExhausted no se encontró un PIN libre tras maxPINAttempts intentos.
var ErrPINSpaceExhausted = errors.New("auth: no se pudo generar un PIN único")

// PINService emite PINs numéricos únicos y guarda solo su hash.
type PINService struct {
	actors repository.ActorRepository
	events audit.Sink
	cost   int
	random io.Reader
}

// NewPINService construye el servicio. random nil usa crypto/rand.
func NewPINService(actors repository.ActorRepository, events audit.Sink, cost int, random io.Reader) *PINService {
	if random == nil {
		random = rand.Reader
	}
	if events == nil {
		events = audit.NopSink{}
	}
	return &PINService{actors: actors, events: events, cost: normalizeCost(cost), random: random}
}

// IssuePIN genera un PIN nuevo para el actor, lo persiste hasheado y devuelve el texto plano.
// El texto plano no vuelve a estar disponible.
func (s *PINService) IssuePIN(ctx context.Context, issuerID, actorID string) (string, error) {
	actor, err := s.actors.GetByID(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("auth: obtener actor: %w", err)
	}
	if actor == nil {
		return "", domain.ErrNotFound
	}
	existing, err := s.actors.ListPINHashes(ctx)
	if err != nil {
		return "", fmt.Errorf("auth: listar PINs: %w", err)
	}

	for attempt := 0; attempt < maxPINAttempts; attempt++ {
		pin, err := s.randomPIN()
		if err != nil {
			return "", err
		}
		if inUse(existing, pin) {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
		if err != nil {
			return "", fmt.Errorf("auth: hashear PIN: %w", err)
		}
		if err := s.actors.UpdatePINHash(ctx, actorID, string(hash)); err != nil {
			return "", fmt.Errorf("auth: guardar PIN: %w", err)
		}
		s.events.Publish(ctx, audit.Event{
			Kind:     audit.KindPINIssued,
			ActorID:  issuerID,
			EntityID: actorID,
			Summary:  fmt.Sprintf("PIN emitido para %s", actor.Name),
			At:       time.Now(),
		})
		return pin, nil
	}
	return "", ErrPINSpaceExhausted
}

func (s *PINService) randomPIN() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < PINLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(s.random, limit)
	if err != nil {
		return "", fmt.Errorf("auth: generar PIN: %w", err)
	}
	return fmt.Sprintf("%0*d", PINLength, n.Int64()), nil
}

func inUse(hashes []string, pin string) bool {
	for _, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(pin)) == nil {
			return true
		}
	}
	return false
}
