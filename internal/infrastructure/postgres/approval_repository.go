package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*ApprovalRepo)(nil)

// ApprovalRepo solicitudes de aprobación; el payload tipado se guarda como JSONB.
type ApprovalRepo struct {
	q Querier
}

// NewApprovalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApprovalRepository(q Querier) *ApprovalRepo {
	return &ApprovalRepo{q: q}
}

const approvalColumns = `id, request_type, status, requested_by_id, approved_by_id, reason,
	payload, result_movement_id, created_at, decided_at`

// Create persiste una solicitud nueva.
func (r *ApprovalRepo) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	if !req.PayloadValid() {
		return domain.ErrInvalidInput
	}
	payload, err := encodePayload(req)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO approval_requests (` + approvalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		req.ID, string(req.Type), string(req.Status), req.RequestedByID,
		nullString(req.ApprovedByID), nullString(req.Reason), payload,
		nullString(req.ResultMovementID), req.CreatedAt, req.DecidedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create approval request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *ApprovalRepo) GetByID(ctx context.Context, id string) (*entity.ApprovalRequest, error) {
	return r.get(ctx, `SELECT `+approvalColumns+` FROM approval_requests WHERE id = $1`, id)
}

// GetForUpdate obtiene la solicitud y bloquea la fila; es el primer bloqueo de cada decisión.
func (r *ApprovalRepo) GetForUpdate(ctx context.Context, id string) (*entity.ApprovalRequest, error) {
	return r.get(ctx, `SELECT `+approvalColumns+` FROM approval_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *ApprovalRepo) get(ctx context.Context, query, id string) (*entity.ApprovalRequest, error) {
	req, err := scanApproval(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	return req, nil
}

// Transition aplica el cambio solo desde PENDING (compare-and-set sobre status).
func (r *ApprovalRepo) Transition(ctx context.Context, t repository.Transition) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE approval_requests
		SET status = $2, approved_by_id = $3, result_movement_id = $4, decided_at = $5
		WHERE id = $1 AND status = 'PENDING'`,
		t.RequestID, string(t.To), t.DecidedByID, nullString(t.ResultMovementID), t.At)
	if err != nil {
		return fmt.Errorf("transition approval request: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM approval_requests WHERE id = $1)`, t.RequestID).Scan(&exists); err != nil {
		return fmt.Errorf("transition approval request: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyProcessed
}

// ListByStatus solicitudes en un estado, más antiguas primero.
func (r *ApprovalRepo) ListByStatus(ctx context.Context, status entity.RequestStatus, limit, offset int) ([]*entity.ApprovalRequest, error) {
	query, args := appendPage(
		`SELECT `+approvalColumns+` FROM approval_requests WHERE status = $1 ORDER BY created_at, id`,
		[]any{string(status)}, limit, offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list approval requests: %w", err)
	}
	defer rows.Close()
	var out []*entity.ApprovalRequest
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func encodePayload(req *entity.ApprovalRequest) ([]byte, error) {
	var v any
	switch req.Type {
	case entity.RequestTypeExitApproval:
		v = req.Exit
	case entity.RequestTypeReversal:
		v = req.Reversal
	default:
		return nil, domain.ErrInvalidInput
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func decodePayload(req *entity.ApprovalRequest, raw []byte) error {
	switch req.Type {
	case entity.RequestTypeExitApproval:
		req.Exit = &entity.ExitPayload{}
		return json.Unmarshal(raw, req.Exit)
	case entity.RequestTypeReversal:
		req.Reversal = &entity.ReversalPayload{}
		return json.Unmarshal(raw, req.Reversal)
	}
	return fmt.Errorf("request_type desconocido %q", req.Type)
}

func scanApproval(row pgx.Row) (*entity.ApprovalRequest, error) {
	var (
		req                      entity.ApprovalRequest
		reqType, status          string
		approvedBy, reason, resM *string
		payload                  []byte
		decidedAt                *time.Time
	)
	err := row.Scan(
		&req.ID, &reqType, &status, &req.RequestedByID, &approvedBy, &reason,
		&payload, &resM, &req.CreatedAt, &decidedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Type = entity.RequestType(reqType)
	req.Status = entity.RequestStatus(status)
	req.ApprovedByID = deref(approvedBy)
	req.Reason = deref(reason)
	req.ResultMovementID = deref(resM)
	req.DecidedAt = decidedAt
	if err := decodePayload(&req, payload); err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", req.ID, err)
	}
	return &req, nil
}
