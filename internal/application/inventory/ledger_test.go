package inventory_test

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exitInput(loc string, qty int64, typeID string) inventory.ExitInput {
	return inventory.ExitInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: loc, Quantity: qty, MovementTypeID: typeID,
	}
}

func TestRecordEntry_SimpleEntry(t *testing.T) {
	f := newFixture(t)

	m := f.entry(t, locA, 10)

	assert.Equal(t, typeEntry, m.MovementTypeID)
	assert.Equal(t, locA, m.ToLocationID)
	assert.Empty(t, m.FromLocationID)
	assert.Equal(t, operator, m.ActorID)
	assert.Equal(t, int64(10), f.balance(t, locA))

	events := f.events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, audit.KindEntryRecorded, events[0].Kind)
	assert.Equal(t, m.ID, events[0].EntityID)
}

func TestRecordEntry_RejectsBadSecret(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name    string
		actorID string
		pin     string
	}{
		{"wrong pin", operator, "999999"},
		{"unknown actor", "ghost", operatorPIN},
		{"inactive actor", "inactive", "333333"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.RecordEntry(ctx, inventory.EntryInput{
				ActorID: tc.actorID, PIN: tc.pin, SKUID: skuID, LocationID: locA, Quantity: 1,
			})
			require.ErrorIs(t, err, domain.ErrInvalidSecret)
		})
	}
	assert.Equal(t, int64(0), f.balance(t, locA))
	assert.Empty(t, f.events.Drain())
}

func TestRecordEntry_ValidatesReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddLocation(entity.Location{ID: "closed", Name: "Cerrada", Active: false})

	cases := []struct {
		name string
		in   inventory.EntryInput
		want error
	}{
		{"unknown sku", inventory.EntryInput{SKUID: "nope", LocationID: locA, Quantity: 1}, domain.ErrNotFound},
		{"unknown location", inventory.EntryInput{SKUID: skuID, LocationID: "nope", Quantity: 1}, domain.ErrNotFound},
		{"inactive location", inventory.EntryInput{SKUID: skuID, LocationID: "closed", Quantity: 1}, domain.ErrNotFound},
		{"zero quantity", inventory.EntryInput{SKUID: skuID, LocationID: locA, Quantity: 0}, domain.ErrInvalidInput},
		{"negative quantity", inventory.EntryInput{SKUID: skuID, LocationID: locA, Quantity: -3}, domain.ErrInvalidInput},
		{"unknown type", inventory.EntryInput{SKUID: skuID, LocationID: locA, Quantity: 1, MovementTypeID: "nope"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			in.ActorID, in.PIN = operator, operatorPIN
			_, err := f.ledger.RecordEntry(ctx, in)
			require.ErrorIs(t, err, tc.want)
		})
	}

	movements, err := f.ledger.ListMovements(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestRecordEntry_MissingDefaultType(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.MovementTypes().Delete(context.Background(), typeEntry))

	_, err := f.ledger.RecordEntry(context.Background(), inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestRecordExit_Direct(t *testing.T) {
	f := newFixture(t)
	f.entry(t, locA, 10)

	m, err := f.ledger.RecordExit(context.Background(), exitInput(locA, 4, typeExit))
	require.NoError(t, err)

	assert.Equal(t, locA, m.FromLocationID)
	assert.Empty(t, m.ToLocationID)
	assert.Equal(t, int64(6), f.balance(t, locA))
}

func TestRecordExit_GatedTypeRequiresApproval(t *testing.T) {
	f := newFixture(t)
	f.entry(t, locA, 10)
	f.events.Drain()

	_, err := f.ledger.RecordExit(context.Background(), exitInput(locA, 4, typeSpecial))
	require.ErrorIs(t, err, domain.ErrApprovalRequired)

	assert.Equal(t, int64(10), f.balance(t, locA))
	assert.Empty(t, f.events.Drain())
}

func TestRecordExit_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.entry(t, locA, 3)

	_, err := f.ledger.RecordExit(context.Background(), exitInput(locA, 5, typeExit))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	available, ok := domain.AvailableStock(err)
	require.True(t, ok)
	assert.Equal(t, int64(3), available)
	assert.Equal(t, int64(3), f.balance(t, locA))
}

func TestRecordExit_ConcurrentNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, 10)

	const workers = 25
	const qty = 2
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		shortages int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordExit(ctx, exitInput(locA, qty, typeExit))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				shortages++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10/qty, successes)
	assert.Equal(t, workers-10/qty, shortages)
	assert.Equal(t, int64(0), f.balance(t, locA))
}

func TestRecordReversal_SelfInverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, 5)
	exit, err := f.ledger.RecordExit(ctx, exitInput(locA, 2, typeExit))
	require.NoError(t, err)
	require.Equal(t, int64(3), f.balance(t, locA))

	comp, err := f.ledger.RecordReversal(ctx, exit.ID, supervisor, "error de digitación")
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.balance(t, locA))
	assert.Equal(t, typeReversal, comp.MovementTypeID)
	assert.Equal(t, exit.ID, comp.ReversalOfMovementID)
	assert.Equal(t, locA, comp.ToLocationID)
	assert.Empty(t, comp.FromLocationID)

	original, err := f.ledger.GetMovement(ctx, exit.ID)
	require.NoError(t, err)
	assert.Equal(t, comp.ID, original.RevertedByMovementID)

	_, err = f.ledger.RecordReversal(ctx, exit.ID, supervisor, "otra vez")
	require.ErrorIs(t, err, domain.ErrAlreadyReverted)
	assert.Equal(t, int64(5), f.balance(t, locA))
}

func TestRecordReversal_OfReversalRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.entry(t, locA, 4)
	comp, err := f.ledger.RecordReversal(ctx, entry.ID, supervisor, "entrada errada")
	require.NoError(t, err)
	require.Equal(t, int64(0), f.balance(t, locA))

	_, err = f.ledger.RecordReversal(ctx, comp.ID, supervisor, "deshacer")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(0), f.balance(t, locA))
}

func TestRecordReversal_AfterLaterExit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.entry(t, locA, 10)
	_, err := f.ledger.RecordExit(ctx, exitInput(locA, 8, typeExit))
	require.NoError(t, err)

	_, err = f.ledger.RecordReversal(ctx, entry.ID, supervisor, "entrada duplicada")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	available, _ := domain.AvailableStock(err)
	assert.Equal(t, int64(2), available)

	original, err := f.ledger.GetMovement(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, original.IsReverted())
	assert.Equal(t, int64(2), f.balance(t, locA))
}

func TestRecordReversal_InactiveLocationFailsClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, 5)
	exit, err := f.ledger.RecordExit(ctx, exitInput(locA, 5, typeExit))
	require.NoError(t, err)

	f.store.SetLocationActive(locA, false)
	_, err = f.ledger.RecordReversal(ctx, exit.ID, supervisor, "ubicación cerrada")
	require.ErrorIs(t, err, domain.ErrNotFound)

	original, err := f.ledger.GetMovement(ctx, exit.ID)
	require.NoError(t, err)
	assert.False(t, original.IsReverted())
}

func TestRecordReversal_UnknownMovement(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RecordReversal(context.Background(), "nope", supervisor, "x")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordReversal_MissingReversalType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	entry := f.entry(t, locA, 5)
	require.NoError(t, f.store.MovementTypes().Delete(ctx, typeReversal))

	_, err := f.ledger.RecordReversal(ctx, entry.ID, supervisor, "x")
	require.ErrorIs(t, err, domain.ErrConfigurationMissing)
	assert.Equal(t, int64(5), f.balance(t, locA))
}

func TestAssetMovements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddAsset(entity.Asset{ID: "asset-1", SKUID: skuID, Serial: "SN-1"})
	f.store.AddAsset(entity.Asset{ID: "asset-2", SKUID: "sku-2", Serial: "SN-2"})

	_, err := f.ledger.RecordEntry(ctx, inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 2, AssetID: "asset-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordEntry(ctx, inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 1, AssetID: "asset-2",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordEntry(ctx, inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 1, AssetID: "asset-1",
	})
	require.NoError(t, err)
	asset, err := f.store.Assets().GetByID(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusInStock, asset.Status)

	in := exitInput(locA, 1, typeWriteOff)
	in.AssetID = "asset-1"
	writeOff, err := f.ledger.RecordExit(ctx, in)
	require.NoError(t, err)
	asset, err = f.store.Assets().GetByID(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusWrittenOff, asset.Status)

	_, err = f.ledger.RecordReversal(ctx, writeOff.ID, supervisor, "baja por error")
	require.NoError(t, err)
	asset, err = f.store.Assets().GetByID(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusInStock, asset.Status)
}

func TestAssetStatusGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddAsset(entity.Asset{ID: "asset-3", SKUID: skuID, Serial: "SN-3", Status: entity.AssetStatusRegistered})
	f.entry(t, locA, 5)
	assetEntry := inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 1, AssetID: "asset-3",
	}
	assetExit := func(typeID string) inventory.ExitInput {
		in := exitInput(locA, 1, typeID)
		in.AssetID = "asset-3"
		return in
	}
	status := func() string {
		a, err := f.store.Assets().GetByID(ctx, "asset-3")
		require.NoError(t, err)
		return a.Status
	}

	_, err := f.ledger.RecordExit(ctx, assetExit(typeExit))
	require.ErrorIs(t, err, domain.ErrInvalidInput, "un activo sin entrada no sale")

	_, err = f.ledger.RecordEntry(ctx, assetEntry)
	require.NoError(t, err)
	_, err = f.ledger.RecordEntry(ctx, assetEntry)
	require.ErrorIs(t, err, domain.ErrInvalidInput, "un activo en stock no vuelve a entrar")
	assert.Equal(t, int64(6), f.balance(t, locA))

	_, err = f.ledger.RecordExit(ctx, assetExit(typeExit))
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusIssued, status())
	_, err = f.ledger.RecordExit(ctx, assetExit(typeExit))
	require.ErrorIs(t, err, domain.ErrInvalidInput, "un activo despachado no vuelve a salir")
	assert.Equal(t, int64(5), f.balance(t, locA))

	_, err = f.ledger.RecordEntry(ctx, assetEntry)
	require.NoError(t, err)
	_, err = f.ledger.RecordExit(ctx, assetExit(typeWriteOff))
	require.NoError(t, err)
	assert.Equal(t, entity.AssetStatusWrittenOff, status())

	_, err = f.ledger.RecordExit(ctx, assetExit(typeExit))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.RecordEntry(ctx, assetEntry)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), f.balance(t, locA))
}

func TestRecordEntry_BalanceOverflowRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, math.MaxInt64)

	_, err := f.ledger.RecordEntry(ctx, inventory.EntryInput{
		ActorID: operator, PIN: operatorPIN, SKUID: skuID, LocationID: locA, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(math.MaxInt64), f.balance(t, locA))

	movements, err := f.ledger.ListMovements(ctx, repository.MovementFilter{SKUID: skuID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, movements, 1, "la entrada rechazada no deja movimiento")
}

func TestReversal_IncrementOverflowRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, 5)
	exit, err := f.ledger.RecordExit(ctx, exitInput(locA, 5, typeExit))
	require.NoError(t, err)
	f.entry(t, locA, math.MaxInt64)

	_, err = f.ledger.RecordReversal(ctx, exit.ID, supervisor, "devolución")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(math.MaxInt64), f.balance(t, locA))

	stored, err := f.ledger.GetMovement(ctx, exit.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsReverted())
}

func TestConservation_RandomSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rng := rand.New(rand.NewSource(42))
	locations := []string{locA, locB}
	var committed []*entity.Movement

	for i := 0; i < 200; i++ {
		loc := locations[rng.Intn(len(locations))]
		qty := int64(rng.Intn(5) + 1)
		switch rng.Intn(3) {
		case 0:
			committed = append(committed, f.entry(t, loc, qty))
		case 1:
			m, err := f.ledger.RecordExit(ctx, exitInput(loc, qty, typeExit))
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
				continue
			}
			committed = append(committed, m)
		case 2:
			if len(committed) == 0 {
				continue
			}
			target := committed[rng.Intn(len(committed))]
			m, err := f.ledger.RecordReversal(ctx, target.ID, supervisor, "ajuste")
			if err != nil {
				continue
			}
			committed = append(committed, m)
		}
	}

	all, err := f.store.Movements().List(ctx, repository.MovementFilter{Limit: 10000})
	require.NoError(t, err)
	assert.Len(t, all, len(committed))

	totals := domaininv.Fold(all)
	for _, loc := range locations {
		key := entity.BalanceKey{SKUID: skuID, LocationID: loc}
		got := f.balance(t, loc)
		assert.Equal(t, totals[key], got, "saldo de %s", loc)
		assert.GreaterOrEqual(t, got, int64(0))
	}
}

func TestListMovements_Filters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.entry(t, locA, 5)
	f.entry(t, locB, 5)
	_, err := f.ledger.RecordExit(ctx, exitInput(locA, 1, typeExit))
	require.NoError(t, err)

	byLoc, err := f.ledger.ListMovements(ctx, repository.MovementFilter{LocationID: locA})
	require.NoError(t, err)
	assert.Len(t, byLoc, 2)

	byType, err := f.ledger.ListMovements(ctx, repository.MovementFilter{MovementTypeID: typeExit})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, typeExit, byType[0].MovementTypeID)

	paged, err := f.ledger.ListMovements(ctx, repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	balances, err := f.ledger.ListBalances(ctx, repository.BalanceFilter{SKUID: skuID})
	require.NoError(t, err)
	assert.Len(t, balances, 2)
}
