package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	skuID       = "sku-1"
	locA        = "loc-a"
	locB        = "loc-b"
	operator    = "op-1"
	operatorPIN = "111111"
	supervisor  = "sup-1"

	typeEntry    = "t-entry"
	typeReversal = "t-rev"
	typeExit     = "t-exit"
	typeSpecial  = "t-special"
	typeWriteOff = "t-writeoff"
)

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	events *audit.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddSKU(entity.SKU{ID: skuID, Code: "TAL-001", Name: "Taladro"})
	s.AddSKU(entity.SKU{ID: "sku-2", Code: "MAR-002", Name: "Martillo"})
	s.AddLocation(entity.Location{ID: locA, Name: "Bodega A", Active: true})
	s.AddLocation(entity.Location{ID: locB, Name: "Bodega B", Active: true})
	s.AddMovementType(entity.MovementType{ID: typeEntry, Name: "Entrada", SetsAssetStatus: entity.AssetStatusInStock})
	s.AddMovementType(entity.MovementType{ID: typeReversal, Name: "Estorno"})
	s.AddMovementType(entity.MovementType{ID: typeExit, Name: "Saída"})
	s.AddMovementType(entity.MovementType{ID: typeSpecial, Name: "Saída Especial", RequiresApproval: true})
	s.AddMovementType(entity.MovementType{ID: typeWriteOff, Name: "Baixa", IsFinalWriteOff: true})
	s.AddActor(entity.Actor{ID: operator, Name: "Operador", Role: entity.RoleBodeguero, PINHash: hashPIN(t, operatorPIN), Status: "active"})
	s.AddActor(entity.Actor{ID: supervisor, Name: "Supervisor", Role: entity.RoleSupervisor, PINHash: hashPIN(t, "222222"), Status: "active"})
	s.AddActor(entity.Actor{ID: "inactive", Name: "Retirado", Role: entity.RoleBodeguero, PINHash: hashPIN(t, "333333"), Status: "inactive"})

	authorizer, err := auth.NewPINAuthorizer(s.Actors(), bcrypt.MinCost)
	require.NoError(t, err)

	events := audit.NewRecorder(256)
	ledger := inventory.NewLedgerUseCase(s, authorizer, inventory.Repositories{
		SKUs:          s.SKUs(),
		Locations:     s.Locations(),
		Assets:        s.Assets(),
		MovementTypes: s.MovementTypes(),
		Movements:     s.Movements(),
		Balances:      s.Balances(),
	}, events, inventory.LedgerConfig{EntryTypeName: "Entrada", ReversalTypeName: "Estorno"})
	return &fixture{store: s, ledger: ledger, events: events}
}

func hashPIN(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func (f *fixture) entry(t *testing.T, loc string, qty int64) *entity.Movement {
	t.Helper()
	m, err := f.ledger.RecordEntry(context.Background(), inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: loc, Quantity: qty,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) balance(t *testing.T, loc string) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), skuID, loc)
	require.NoError(t, err)
	return b.Quantity
}
