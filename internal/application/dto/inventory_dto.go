package dto

import "time"

// RecordEntryRequest body para POST /api/inventory/entries.
type RecordEntryRequest struct {
	PIN            string `json:"pin" validate:"required,numeric,len=6"`
	SKUID          string `json:"sku_id" validate:"required"`
	LocationID     string `json:"location_id" validate:"required"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	MovementTypeID string `json:"movement_type_id,omitempty"`
	Reason         string `json:"reason,omitempty" validate:"max=500"`
	AssetID        string `json:"asset_id,omitempty"`
}

// RecordExitRequest body para POST /api/inventory/exits.
type RecordExitRequest struct {
	PIN            string `json:"pin" validate:"required,numeric,len=6"`
	SKUID          string `json:"sku_id" validate:"required"`
	LocationID     string `json:"location_id" validate:"required"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	MovementTypeID string `json:"movement_type_id" validate:"required"`
	Reason         string `json:"reason,omitempty" validate:"max=500"`
	AssetID        string `json:"asset_id,omitempty"`
}

// BalanceQuery filtros de GET /api/inventory/balances.
type BalanceQuery struct {
	SKUID       string `query:"sku_id"`
	LocationID  string `query:"location_id"`
	IncludeZero bool   `query:"include_zero"`
	PageRequest
}

// MovementQuery filtros de GET /api/inventory/movements. Fechas en RFC3339.
type MovementQuery struct {
	SKUID          string `query:"sku_id"`
	LocationID     string `query:"location_id"`
	MovementTypeID string `query:"movement_type_id"`
	From           string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To             string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PageRequest
}

// BalanceResponse saldo de un SKU en una ubicación.
type BalanceResponse struct {
	SKUID      string    `json:"sku_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// MovementResponse movimiento confirmado.
type MovementResponse struct {
	ID                   string    `json:"id"`
	MovementTypeID       string    `json:"movement_type_id"`
	SKUID                string    `json:"sku_id"`
	Quantity             int64     `json:"quantity"`
	FromLocationID       string    `json:"from_location_id,omitempty"`
	ToLocationID         string    `json:"to_location_id,omitempty"`
	ActorID              string    `json:"actor_id"`
	Reason               string    `json:"reason,omitempty"`
	AssetID              string    `json:"asset_id,omitempty"`
	RevertedByMovementID string    `json:"reverted_by_movement_id,omitempty"`
	ReversalOfMovementID string    `json:"reversal_of_movement_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
