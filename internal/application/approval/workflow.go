package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// Config reglas del flujo de aprobación.
type Config struct {
	AllowSelfApproval bool
}

// Workflow retiene salidas y reversiones en estado PENDING hasta que un segundo actor decide.
// Una decisión es una sola transacción: bloqueo de la solicitud, efecto en el ledger y transición.
type Workflow struct {
	txRunner  inventory.TxRunner
	auth      inventory.Authorizer
	ledger    *inventory.LedgerUseCase
	approvals repository.ApprovalRepository
	events    audit.Sink
	cfg       Config
	now       func() time.Time
}

// NewWorkflow construye el flujo de aprobación.
func NewWorkflow(
	txRunner inventory.TxRunner,
	auth inventory.Authorizer,
	ledger *inventory.LedgerUseCase,
	approvals repository.ApprovalRepository,
	events audit.Sink,
	cfg Config,
) *Workflow {
	if events == nil {
		events = audit.NopSink{}
	}
	return &Workflow{
		txRunner:  txRunner,
		auth:      auth,
		ledger:    ledger,
		approvals: approvals,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (w *Workflow) SetClock(now func() time.Time) { w.now = now }

// Decision actor y PIN de quien aprueba o rechaza.
type Decision struct {
	RequestID string
	ActorID   string
	PIN       string
}

// Outcome resultado de una decisión: la solicitud actualizada y, si se aprobó, el movimiento creado.
type Outcome struct {
	Request  *entity.ApprovalRequest
	Movement *entity.Movement
}

// SubmitExit valida el PIN una sola vez y enruta según el tipo: salida directa (movimiento)
// o solicitud PENDING si el tipo requiere aprobación. Exactamente uno de los dos resultados es no nil.
func (w *Workflow) SubmitExit(ctx context.Context, in inventory.ExitInput) (*entity.Movement, *entity.ApprovalRequest, error) {
	if err := w.auth.Authorize(ctx, in.ActorID, in.PIN); err != nil {
		return nil, nil, err
	}
	mt, err := w.ledger.ValidateExit(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	if !mt.RequiresApproval {
		mov, err := w.ledger.ExecuteExit(ctx, mt, in)
		return mov, nil, err
	}
	req, err := w.openExitRequest(ctx, mt, in)
	return nil, req, err
}

// RequestExitApproval crea una solicitud PENDING para una salida cuyo tipo requiere aprobación.
// No tiene efecto sobre saldos; la suficiencia se revisa de nuevo al aprobar.
func (w *Workflow) RequestExitApproval(ctx context.Context, in inventory.ExitInput) (*entity.ApprovalRequest, error) {
	if err := w.auth.Authorize(ctx, in.ActorID, in.PIN); err != nil {
		return nil, err
	}
	mt, err := w.ledger.ValidateExit(ctx, in)
	if err != nil {
		return nil, err
	}
	if !mt.RequiresApproval {
		return nil, fmt.Errorf("%w: el tipo %q no requiere aprobación", domain.ErrInvalidInput, mt.Name)
	}
	return w.openExitRequest(ctx, mt, in)
}

func (w *Workflow) openExitRequest(ctx context.Context, mt *entity.MovementType, in inventory.ExitInput) (*entity.ApprovalRequest, error) {
	balance, err := w.ledger.GetBalance(ctx, in.SKUID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if balance.Quantity < in.Quantity {
		return nil, domain.NewInsufficientStock(in.SKUID, in.LocationID, balance.Quantity, in.Quantity)
	}

	req := &entity.ApprovalRequest{
		ID:            uuid.New().String(),
		Type:          entity.RequestTypeExitApproval,
		Status:        entity.RequestStatusPending,
		RequestedByID: in.ActorID,
		Reason:        in.Reason,
		Exit: &entity.ExitPayload{
			SKUID:          in.SKUID,
			LocationID:     in.LocationID,
			Quantity:       in.Quantity,
			MovementTypeID: mt.ID,
			AssetID:        in.AssetID,
			Reason:         in.Reason,
		},
		CreatedAt: w.now(),
	}
	if err := w.approvals.Create(ctx, req); err != nil {
		return nil, err
	}

	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindExitRequested,
		ActorID:  req.RequestedByID,
		EntityID: req.ID,
		Summary:  fmt.Sprintf("salida de %d x %s desde %s pendiente de aprobación (%s)", in.Quantity, in.SKUID, in.LocationID, mt.Name),
		At:       req.CreatedAt,
		Fields:   requestFields(req),
	})
	return req, nil
}

// ApproveExit ejecuta la salida retenida a nombre del solicitante y marca la solicitud APPROVED.
// Si el saldo ya no alcanza, nada cambia y la solicitud sigue PENDING.
func (w *Workflow) ApproveExit(ctx context.Context, d Decision) (*Outcome, error) {
	if err := w.auth.Authorize(ctx, d.ActorID, d.PIN); err != nil {
		return nil, err
	}
	now := w.now()
	var out Outcome
	err := w.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		req, err := lockPending(ctx, repos, d.RequestID, entity.RequestTypeExitApproval)
		if err != nil {
			return err
		}
		if err := w.checkSelfApproval(req, d.ActorID); err != nil {
			return err
		}
		p := req.Exit
		mt, err := w.ledger.ValidateExitInTx(ctx, repos, inventory.ExitInput{
			SKUID:          p.SKUID,
			LocationID:     p.LocationID,
			Quantity:       p.Quantity,
			MovementTypeID: p.MovementTypeID,
			AssetID:        p.AssetID,
		})
		if err != nil {
			return err
		}
		mov, err := w.ledger.ExitInTx(ctx, repos, mt, inventory.ExitSpec{
			ActorID:    req.RequestedByID,
			SKUID:      p.SKUID,
			LocationID: p.LocationID,
			Quantity:   p.Quantity,
			AssetID:    p.AssetID,
			Reason:     p.Reason,
		}, now)
		if err != nil {
			return err
		}
		if err := transition(ctx, repos, req, entity.RequestStatusApproved, d.ActorID, mov.ID, now); err != nil {
			return err
		}
		out = Outcome{Request: req, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindExitApproved,
		ActorID:  d.ActorID,
		EntityID: out.Request.ID,
		Summary:  fmt.Sprintf("salida aprobada: movimiento %s", out.Movement.ID),
		At:       now,
		Fields:   requestFields(out.Request),
	})
	return &out, nil
}

// RejectExit marca la solicitud REJECTED sin efecto en el ledger.
func (w *Workflow) RejectExit(ctx context.Context, d Decision) (*entity.ApprovalRequest, error) {
	req, err := w.reject(ctx, d, entity.RequestTypeExitApproval)
	if err != nil {
		return nil, err
	}
	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindExitRejected,
		ActorID:  d.ActorID,
		EntityID: req.ID,
		Summary:  "salida rechazada",
		At:       *req.DecidedAt,
		Fields:   requestFields(req),
	})
	return req, nil
}

// RequestReversal crea una solicitud PENDING para revertir un movimiento confirmado.
// Las reversiones siempre pasan por aprobación.
func (w *Workflow) RequestReversal(ctx context.Context, actorID, pin, movementID, reason string) (*entity.ApprovalRequest, error) {
	if err := w.auth.Authorize(ctx, actorID, pin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if movementID == "" || reason == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := w.ledger.GetMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov.IsReverted() {
		return nil, domain.ErrAlreadyReverted
	}
	if mov.IsReversal() {
		return nil, fmt.Errorf("%w: un movimiento de reversión no se revierte", domain.ErrInvalidInput)
	}

	req := &entity.ApprovalRequest{
		ID:            uuid.New().String(),
		Type:          entity.RequestTypeReversal,
		Status:        entity.RequestStatusPending,
		RequestedByID: actorID,
		Reason:        reason,
		Reversal:      &entity.ReversalPayload{MovementID: mov.ID, Reason: reason},
		CreatedAt:     w.now(),
	}
	if err := w.approvals.Create(ctx, req); err != nil {
		return nil, err
	}

	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindReversalRequested,
		ActorID:  actorID,
		EntityID: req.ID,
		Summary:  fmt.Sprintf("reversión solicitada para el movimiento %s", mov.ID),
		At:       req.CreatedAt,
		Fields:   requestFields(req),
	})
	return req, nil
}

// ApproveReversal crea el movimiento compensatorio y marca la solicitud APPROVED en una transacción.
func (w *Workflow) ApproveReversal(ctx context.Context, d Decision) (*Outcome, error) {
	if err := w.auth.Authorize(ctx, d.ActorID, d.PIN); err != nil {
		return nil, err
	}
	now := w.now()
	var out Outcome
	err := w.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		req, err := lockPending(ctx, repos, d.RequestID, entity.RequestTypeReversal)
		if err != nil {
			return err
		}
		if err := w.checkSelfApproval(req, d.ActorID); err != nil {
			return err
		}
		mov, err := w.ledger.ReversalInTx(ctx, repos, req.Reversal.MovementID, req.RequestedByID, req.Reversal.Reason, now)
		if err != nil {
			return err
		}
		if err := transition(ctx, repos, req, entity.RequestStatusApproved, d.ActorID, mov.ID, now); err != nil {
			return err
		}
		out = Outcome{Request: req, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindReversalApproved,
		ActorID:  d.ActorID,
		EntityID: out.Request.ID,
		Summary:  fmt.Sprintf("movimiento %s revertido por %s", out.Movement.ReversalOfMovementID, out.Movement.ID),
		At:       now,
		Fields:   requestFields(out.Request),
	})
	return &out, nil
}

// RejectReversal marca la solicitud de reversión REJECTED; el movimiento queda intacto.
func (w *Workflow) RejectReversal(ctx context.Context, d Decision) (*entity.ApprovalRequest, error) {
	req, err := w.reject(ctx, d, entity.RequestTypeReversal)
	if err != nil {
		return nil, err
	}
	w.events.Publish(ctx, audit.Event{
		Kind:     audit.KindReversalRejected,
		ActorID:  d.ActorID,
		EntityID: req.ID,
		Summary:  fmt.Sprintf("reversión del movimiento %s rechazada", req.Reversal.MovementID),
		At:       *req.DecidedAt,
		Fields:   requestFields(req),
	})
	return req, nil
}

// Approve despacha según el tipo de la solicitud.
func (w *Workflow) Approve(ctx context.Context, d Decision) (*Outcome, error) {
	req, err := w.Get(ctx, d.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Type == entity.RequestTypeReversal {
		return w.ApproveReversal(ctx, d)
	}
	return w.ApproveExit(ctx, d)
}

// Reject despacha según el tipo de la solicitud.
func (w *Workflow) Reject(ctx context.Context, d Decision) (*entity.ApprovalRequest, error) {
	req, err := w.Get(ctx, d.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Type == entity.RequestTypeReversal {
		return w.RejectReversal(ctx, d)
	}
	return w.RejectExit(ctx, d)
}

// Get obtiene una solicitud por ID.
func (w *Workflow) Get(ctx context.Context, id string) (*entity.ApprovalRequest, error) {
	req, err := w.approvals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// ListPending solicitudes pendientes, más antiguas primero.
func (w *Workflow) ListPending(ctx context.Context, limit, offset int) ([]*entity.ApprovalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return w.approvals.ListByStatus(ctx, entity.RequestStatusPending, limit, offset)
}

func (w *Workflow) reject(ctx context.Context, d Decision, want entity.RequestType) (*entity.ApprovalRequest, error) {
	if err := w.auth.Authorize(ctx, d.ActorID, d.PIN); err != nil {
		return nil, err
	}
	now := w.now()
	var out *entity.ApprovalRequest
	err := w.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		req, err := lockPending(ctx, repos, d.RequestID, want)
		if err != nil {
			return err
		}
		if err := transition(ctx, repos, req, entity.RequestStatusRejected, d.ActorID, "", now); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Workflow) checkSelfApproval(req *entity.ApprovalRequest, approverID string) error {
	if !w.cfg.AllowSelfApproval && req.RequestedByID == approverID {
		return domain.ErrSelfApproval
	}
	return nil
}

// lockPending bloquea la solicitud y aplica las guardas en orden: existencia, estado, tipo.
func lockPending(ctx context.Context, repos inventory.TxRepos, id string, want entity.RequestType) (*entity.ApprovalRequest, error) {
	req, err := repos.Approvals.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	if !req.IsPending() {
		return nil, domain.ErrAlreadyProcessed
	}
	if req.Type != want || !req.PayloadValid() {
		return nil, domain.ErrWrongType
	}
	return req, nil
}

func transition(
	ctx context.Context,
	repos inventory.TxRepos,
	req *entity.ApprovalRequest,
	to entity.RequestStatus,
	actorID, movementID string,
	at time.Time,
) error {
	err := repos.Approvals.Transition(ctx, repository.Transition{
		RequestID:        req.ID,
		To:               to,
		DecidedByID:      actorID,
		ResultMovementID: movementID,
		At:               at,
	})
	if err != nil {
		return err
	}
	req.Status = to
	req.ApprovedByID = actorID
	req.ResultMovementID = movementID
	req.DecidedAt = &at
	return nil
}

func requestFields(r *entity.ApprovalRequest) map[string]string {
	f := map[string]string{
		"request_type":    string(r.Type),
		"status":          string(r.Status),
		"requested_by_id": r.RequestedByID,
	}
	if r.ApprovedByID != "" {
		f["decided_by_id"] = r.ApprovedByID
	}
	if r.ResultMovementID != "" {
		f["result_movement_id"] = r.ResultMovementID
	}
	if r.Exit != nil {
		f["sku_id"] = r.Exit.SKUID
		f["location_id"] = r.Exit.LocationID
		f["quantity"] = fmt.Sprintf("%d", r.Exit.Quantity)
	}
	if r.Reversal != nil {
		f["movement_id"] = r.Reversal.MovementID
	}
	return f
}
