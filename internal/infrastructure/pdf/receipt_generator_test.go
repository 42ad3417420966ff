package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	r := &inventory.Receipt{
		Movement: &entity.Movement{
			ID: "mov-1", SKUID: "sku-1", Quantity: 3, FromLocationID: "loc-a", ActorID: "op-1",
			Reason: "préstamo", ReversalOfMovementID: "mov-0", CreatedAt: time.Now(),
		},
		Type: &entity.MovementType{ID: "t", Name: "Estorno"},
		SKU:  &entity.SKU{ID: "sku-1", Code: "TAL-001", Name: "Taladro"},
		From: &entity.Location{ID: "loc-a", Name: "Bodega A"},
	}
	out, err := NewReceiptGenerator("Bodega Central").Render(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_Incomplete(t *testing.T) {
	_, err := NewReceiptGenerator("").Render(context.Background(), &inventory.Receipt{})
	assert.Error(t, err)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "ENTRADA", direction(&entity.Movement{ToLocationID: "a"}))
	assert.Equal(t, "SALIDA", direction(&entity.Movement{FromLocationID: "a"}))
	assert.Equal(t, "REVERSIÓN", direction(&entity.Movement{ToLocationID: "a", ReversalOfMovementID: "x"}))
	assert.Equal(t, "TRASLADO", direction(&entity.Movement{FromLocationID: "a", ToLocationID: "b"}))
}
