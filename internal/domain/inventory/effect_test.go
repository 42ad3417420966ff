package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
)

func key(sku, loc string) entity.BalanceKey {
	return entity.BalanceKey{SKUID: sku, LocationID: loc}
}

func TestEffects_EntradaSumaEnDestino(t *testing.T) {
	m := &entity.Movement{SKUID: "SKU-1", ToLocationID: "LOC-A", Quantity: 10}
	effects := inventory.Effects(m)
	require.Len(t, effects, 1)
	assert.Equal(t, key("SKU-1", "LOC-A"), effects[0].Key)
	assert.Equal(t, int64(10), effects[0].Delta)
}

func TestEffects_SalidaRestaEnOrigen(t *testing.T) {
	m := &entity.Movement{SKUID: "SKU-1", FromLocationID: "LOC-A", Quantity: 4}
	effects := inventory.Effects(m)
	require.Len(t, effects, 1)
	assert.Equal(t, int64(-4), effects[0].Delta)
}

func TestCompensation_InvierteDireccion(t *testing.T) {
	original := &entity.Movement{ID: "m1", SKUID: "SKU-1", ToLocationID: "LOC-A", Quantity: 10, AssetID: "a1"}
	comp := inventory.Compensation(original)

	assert.Equal(t, "LOC-A", comp.FromLocationID)
	assert.Empty(t, comp.ToLocationID)
	assert.Equal(t, int64(10), comp.Quantity)
	assert.Equal(t, "m1", comp.ReversalOfMovementID)
	assert.Equal(t, "a1", comp.AssetID)
}

// Un movimiento más su compensación no dejan efecto neto.
func TestFold_ReversionEsAutoInversa(t *testing.T) {
	entry := &entity.Movement{ID: "m1", SKUID: "SKU-1", ToLocationID: "LOC-A", Quantity: 10}
	exit := &entity.Movement{ID: "m2", SKUID: "SKU-1", FromLocationID: "LOC-A", Quantity: 4}
	comp := inventory.Compensation(entry)

	totals := inventory.Fold([]*entity.Movement{entry, exit})
	assert.Equal(t, int64(6), totals[key("SKU-1", "LOC-A")])

	totals = inventory.Fold([]*entity.Movement{entry, exit, comp})
	assert.Equal(t, int64(-4), totals[key("SKU-1", "LOC-A")])

	totals = inventory.Fold([]*entity.Movement{entry, comp})
	assert.Equal(t, int64(0), totals[key("SKU-1", "LOC-A")])
}

func TestAssetStatusAfter(t *testing.T) {
	writeOff := &entity.MovementType{IsFinalWriteOff: true}
	explicit := &entity.MovementType{SetsAssetStatus: "EN_REPARACION"}
	plain := &entity.MovementType{}

	exit := &entity.Movement{FromLocationID: "LOC-A", AssetID: "a1", Quantity: 1}
	entry := &entity.Movement{ToLocationID: "LOC-A", AssetID: "a1", Quantity: 1}
	bulk := &entity.Movement{FromLocationID: "LOC-A", Quantity: 3}

	assert.Equal(t, entity.AssetStatusWrittenOff, inventory.AssetStatusAfter(writeOff, exit))
	assert.Equal(t, "EN_REPARACION", inventory.AssetStatusAfter(explicit, exit))
	assert.Equal(t, entity.AssetStatusInStock, inventory.AssetStatusAfter(plain, entry))
	assert.Equal(t, entity.AssetStatusIssued, inventory.AssetStatusAfter(plain, exit))
	assert.Equal(t, "", inventory.AssetStatusAfter(writeOff, bulk))
}

func TestCanIncrement(t *testing.T) {
	assert.True(t, inventory.CanIncrement(0, math.MaxInt64))
	assert.True(t, inventory.CanIncrement(math.MaxInt64-1, 1))
	assert.False(t, inventory.CanIncrement(math.MaxInt64, 1))
	assert.False(t, inventory.CanIncrement(1, math.MaxInt64))
}

func TestAssetMovable(t *testing.T) {
	cases := []struct {
		status string
		entry  bool
		want   bool
	}{
		{"", true, true},
		{entity.AssetStatusRegistered, true, true},
		{entity.AssetStatusRegistered, false, false},
		{entity.AssetStatusInStock, true, false},
		{entity.AssetStatusInStock, false, true},
		{entity.AssetStatusIssued, true, true},
		{entity.AssetStatusIssued, false, false},
		{entity.AssetStatusWrittenOff, true, false},
		{entity.AssetStatusWrittenOff, false, false},
		{"EN_REPARACION", true, true},
		{"EN_REPARACION", false, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.AssetMovable(tc.status, tc.entry), "%s entry=%v", tc.status, tc.entry)
	}
}
