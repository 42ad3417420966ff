package dto

import "time"

// CreateMovementTypeRequest entrada para crear un tipo de movimiento.
type CreateMovementTypeRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=100"`
	RequiresApproval bool   `json:"requires_approval"`
	IsFinalWriteOff  bool   `json:"is_final_write_off"`
	SetsAssetStatus  string `json:"sets_asset_status,omitempty" validate:"omitempty,max=50"`
}

// UpdateMovementTypeRequest entrada para actualizar un tipo de movimiento.
type UpdateMovementTypeRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=100"`
	RequiresApproval *bool   `json:"requires_approval"`
	IsFinalWriteOff  *bool   `json:"is_final_write_off"`
	SetsAssetStatus  *string `json:"sets_asset_status" validate:"omitempty,max=50"`
}

// MovementTypeResponse salida de un tipo de movimiento.
type MovementTypeResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	RequiresApproval bool      `json:"requires_approval"`
	IsFinalWriteOff  bool      `json:"is_final_write_off"`
	SetsAssetStatus  string    `json:"sets_asset_status,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
