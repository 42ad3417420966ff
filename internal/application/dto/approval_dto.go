package dto

import "time"

// RequestReversalRequest body para POST /api/inventory/movements/:id/reversal-requests.
type RequestReversalRequest struct {
	PIN    string `json:"pin" validate:"required,numeric,len=6"`
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// DecisionRequest body para aprobar o rechazar una solicitud.
type DecisionRequest struct {
	PIN string `json:"pin" validate:"required,numeric,len=6"`
}

// ExitPayloadResponse parámetros retenidos de una salida.
type ExitPayloadResponse struct {
	SKUID          string `json:"sku_id"`
	LocationID     string `json:"location_id"`
	Quantity       int64  `json:"quantity"`
	MovementTypeID string `json:"movement_type_id"`
	AssetID        string `json:"asset_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// ReversalPayloadResponse movimiento a revertir.
type ReversalPayloadResponse struct {
	MovementID string `json:"movement_id"`
	Reason     string `json:"reason"`
}

// ApprovalResponse solicitud de aprobación.
type ApprovalResponse struct {
	ID               string                   `json:"id"`
	Type             string                   `json:"request_type"`
	Status           string                   `json:"status"`
	RequestedByID    string                   `json:"requested_by_id"`
	ApprovedByID     string                   `json:"approved_by_id,omitempty"`
	Reason           string                   `json:"reason,omitempty"`
	Exit             *ExitPayloadResponse     `json:"exit,omitempty"`
	Reversal         *ReversalPayloadResponse `json:"reversal,omitempty"`
	ResultMovementID string                   `json:"result_movement_id,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	DecidedAt        *time.Time               `json:"decided_at,omitempty"`
}

// ApprovalListResponse lista paginada de solicitudes.
type ApprovalListResponse struct {
	Items []ApprovalResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DecisionResponse resultado de aprobar: la solicitud y el movimiento creado.
type DecisionResponse struct {
	Request  ApprovalResponse  `json:"request"`
	Movement *MovementResponse `json:"movement,omitempty"`
}
