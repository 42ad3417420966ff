package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/approval"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
)

// ApprovalHandler maneja las solicitudes de aprobación (protegido).
type ApprovalHandler struct {
	workflow *approval.Workflow
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(workflow *approval.Workflow) *ApprovalHandler {
	return &ApprovalHandler{workflow: workflow}
}

// ListPending godoc
// @Summary      Solicitudes pendientes (más antiguas primero)
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo 100"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ApprovalListResponse
// @Router       /api/approvals/pending [get]
func (h *ApprovalHandler) ListPending(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	page.DefaultPage()
	list, err := h.workflow.ListPending(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ApprovalResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toApprovalResponse(r))
	}
	return c.JSON(dto.ApprovalListResponse{Items: items, Page: page.Response(len(items))})
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ApprovalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.workflow.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toApprovalResponse(req))
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Ejecuta la salida o la reversión retenida. Solo admin o supervisor.
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  true  "pin"
// @Success      200   {object}  dto.DecisionResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	d, err := decision(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.workflow.Approve(c.UserContext(), d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DecisionResponse{Request: toApprovalResponse(out.Request), Movement: toMovementResponse(out.Movement)})
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la solicitud"
// @Param        body  body  dto.DecisionRequest  true  "pin"
// @Success      200   {object}  dto.DecisionResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	d, err := decision(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.workflow.Reject(c.UserContext(), d)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DecisionResponse{Request: toApprovalResponse(req)})
}

func decision(c *fiber.Ctx) (approval.Decision, error) {
	var in dto.DecisionRequest
	if err := bindBody(c, &in); err != nil {
		return approval.Decision{}, err
	}
	return approval.Decision{RequestID: c.Params("id"), ActorID: GetActorID(c), PIN: in.PIN}, nil
}
