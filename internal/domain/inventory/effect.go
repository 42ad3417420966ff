package inventory

import (
	"math"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Effect es el cambio con signo que un movimiento produce sobre un par (sku, ubicación).
type Effect struct {
	Key   entity.BalanceKey
	Delta int64
}

// Effects devuelve los efectos de un movimiento: resta en origen, suma en destino.
func Effects(m *entity.Movement) []Effect {
	out := make([]Effect, 0, 2)
	if m.FromLocationID != "" {
		out = append(out, Effect{
			Key:   entity.BalanceKey{SKUID: m.SKUID, LocationID: m.FromLocationID},
			Delta: -m.Quantity,
		})
	}
	if m.ToLocationID != "" {
		out = append(out, Effect{
			Key:   entity.BalanceKey{SKUID: m.SKUID, LocationID: m.ToLocationID},
			Delta: m.Quantity,
		})
	}
	return out
}

// Fold suma los efectos de todos los movimientos por par.
// El saldo almacenado debe coincidir siempre con este resultado (conservación).
func Fold(movements []*entity.Movement) map[entity.BalanceKey]int64 {
	totals := make(map[entity.BalanceKey]int64)
	for _, m := range movements {
		for _, e := range Effects(m) {
			totals[e.Key] += e.Delta
		}
	}
	return totals
}

// Compensation construye el movimiento compensatorio: invierte origen y destino
// con el mismo SKU y cantidad.
func Compensation(original *entity.Movement) *entity.Movement {
	return &entity.Movement{
		SKUID:                original.SKUID,
		Quantity:             original.Quantity,
		FromLocationID:       original.ToLocationID,
		ToLocationID:         original.FromLocationID,
		AssetID:              original.AssetID,
		ReversalOfMovementID: original.ID,
	}
}

// AssetStatusAfter decide el estado del activo tras un movimiento del tipo dado.
// Devuelve "" si el estado no cambia.
func AssetStatusAfter(mt *entity.MovementType, m *entity.Movement) string {
	if m.AssetID == "" {
		return ""
	}
	if mt.SetsAssetStatus != "" {
		return mt.SetsAssetStatus
	}
	if mt.IsFinalWriteOff && m.IsExit() {
		return entity.AssetStatusWrittenOff
	}
	if m.IsEntry() {
		return entity.AssetStatusInStock
	}
	if m.IsExit() {
		return entity.AssetStatusIssued
	}
	return ""
}

// CanIncrement indica si current+qty cabe en el saldo (int64); ambos se asumen no negativos.
func CanIncrement(current, qty int64) bool {
	return qty <= math.MaxInt64-current
}

// AssetMovable decide si un activo en el estado dado admite una entrada (entry) o una salida.
// Los dados de baja solo vuelven por reversión. Estados definidos por tipos propios no se restringen.
func AssetMovable(status string, entry bool) bool {
	switch status {
	case entity.AssetStatusWrittenOff:
		return false
	case entity.AssetStatusInStock:
		return !entry
	case "", entity.AssetStatusRegistered, entity.AssetStatusIssued:
		return entry
	}
	return true
}
