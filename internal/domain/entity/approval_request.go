package entity

import "time"

// RequestType identifica la variante de payload de una solicitud de aprobación.
type RequestType string

const (
	RequestTypeExitApproval RequestType = "EXIT_APPROVAL"
	RequestTypeReversal     RequestType = "REVERSAL"
)

// RequestStatus estados de una solicitud; APPROVED y REJECTED son terminales.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// ExitPayload todo lo necesario para reproducir una salida al aprobarla.
type ExitPayload struct {
	SKUID          string `json:"sku_id"`
	LocationID     string `json:"location_id"`
	Quantity       int64  `json:"quantity"`
	MovementTypeID string `json:"movement_type_id"`
	AssetID        string `json:"asset_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// ReversalPayload referencia débil al movimiento a revertir.
type ReversalPayload struct {
	MovementID string `json:"movement_id"`
	Reason     string `json:"reason"`
}

// ApprovalRequest solicitud pendiente de decisión por un segundo actor.
// Exactamente uno de Exit/Reversal está presente según Type.
type ApprovalRequest struct {
	ID               string
	Type             RequestType
	Status           RequestStatus
	RequestedByID    string
	ApprovedByID     string // actor que decidió (aprobó o rechazó)
	Reason           string
	Exit             *ExitPayload
	Reversal         *ReversalPayload
	ResultMovementID string
	CreatedAt        time.Time
	DecidedAt        *time.Time
}

// IsPending indica si la solicitud aún admite transición.
func (r *ApprovalRequest) IsPending() bool { return r.Status == RequestStatusPending }

// PayloadValid verifica que la variante presente coincida con el tipo.
func (r *ApprovalRequest) PayloadValid() bool {
	switch r.Type {
	case RequestTypeExitApproval:
		return r.Exit != nil && r.Reversal == nil
	case RequestTypeReversal:
		return r.Reversal != nil && r.Exit == nil
	}
	return false
}
