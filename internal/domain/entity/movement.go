package entity

import "time"

// Movement representa un movimiento de inventario confirmado (entrada, salida o reversión).
// Es inmutable: solo RevertedByMovementID se asigna una única vez.
type Movement struct {
	ID                   string
	MovementTypeID       string
	SKUID                string
	Quantity             int64  // siempre positiva; la dirección la dan From/To
	FromLocationID       string // vacío en entradas
	ToLocationID         string // vacío en salidas
	ActorID              string
	Reason               string
	AssetID              string
	RevertedByMovementID string // movimiento compensatorio, si existe
	ReversalOfMovementID string // movimiento original, si este es una reversión
	CreatedAt            time.Time
}

// IsEntry indica si el movimiento solo suma en destino.
func (m *Movement) IsEntry() bool { return m.ToLocationID != "" && m.FromLocationID == "" }

// IsExit indica si el movimiento solo resta en origen.
func (m *Movement) IsExit() bool { return m.FromLocationID != "" && m.ToLocationID == "" }

// IsReverted indica si ya existe un movimiento compensatorio.
func (m *Movement) IsReverted() bool { return m.RevertedByMovementID != "" }

// IsReversal indica si el movimiento compensa a otro.
func (m *Movement) IsReversal() bool { return m.ReversalOfMovementID != "" }
