package entity

import "time"

// MovementType configura el comportamiento de un tipo de movimiento.
// RequiresApproval desvía las salidas al flujo de aprobación.
type MovementType struct {
	ID               string
	Name             string // único
	RequiresApproval bool
	IsFinalWriteOff  bool   // baja definitiva (activos pasan a WRITTEN_OFF)
	SetsAssetStatus  string // vacío = no cambia el estado del activo
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
