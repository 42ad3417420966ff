package http

import (
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

func toBalanceResponse(b *entity.StockBalance) dto.BalanceResponse {
	return dto.BalanceResponse{
		SKUID:      b.SKUID,
		LocationID: b.LocationID,
		Quantity:   b.Quantity,
		UpdatedAt:  b.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:                   m.ID,
		MovementTypeID:       m.MovementTypeID,
		SKUID:                m.SKUID,
		Quantity:             m.Quantity,
		FromLocationID:       m.FromLocationID,
		ToLocationID:         m.ToLocationID,
		ActorID:              m.ActorID,
		Reason:               m.Reason,
		AssetID:              m.AssetID,
		RevertedByMovementID: m.RevertedByMovementID,
		ReversalOfMovementID: m.ReversalOfMovementID,
		CreatedAt:            m.CreatedAt,
	}
}

func toApprovalResponse(r *entity.ApprovalRequest) dto.ApprovalResponse {
	out := dto.ApprovalResponse{
		ID:               r.ID,
		Type:             string(r.Type),
		Status:           string(r.Status),
		RequestedByID:    r.RequestedByID,
		ApprovedByID:     r.ApprovedByID,
		Reason:           r.Reason,
		ResultMovementID: r.ResultMovementID,
		CreatedAt:        r.CreatedAt,
		DecidedAt:        r.DecidedAt,
	}
	if e := r.Exit; e != nil {
		out.Exit = &dto.ExitPayloadResponse{
			SKUID:          e.SKUID,
			LocationID:     e.LocationID,
			Quantity:       e.Quantity,
			MovementTypeID: e.MovementTypeID,
			AssetID:        e.AssetID,
			Reason:         e.Reason,
		}
	}
	if rv := r.Reversal; rv != nil {
		out.Reversal = &dto.ReversalPayloadResponse{MovementID: rv.MovementID, Reason: rv.Reason}
	}
	return out
}
