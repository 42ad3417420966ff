package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/approval"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	ledger   *inventory.LedgerUseCase
	workflow *approval.Workflow
	receipts inventory.ReceiptRenderer
}

// NewInventoryHandler construye el handler. receipts puede ser nil (sin comprobantes PDF).
func NewInventoryHandler(ledger *inventory.LedgerUseCase, workflow *approval.Workflow, receipts inventory.ReceiptRenderer) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, workflow: workflow, receipts: receipts}
}

// RecordEntry godoc
// @Summary      Registrar entrada de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordEntryRequest  true  "pin, sku_id, location_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.RecordEntryRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	m, err := h.ledger.RecordEntry(c.UserContext(), inventory.EntryInput{
		ActorID:        GetActorID(c),
		PIN:            in.PIN,
		SKUID:          in.SKUID,
		LocationID:     in.LocationID,
		Quantity:       in.Quantity,
		MovementTypeID: in.MovementTypeID,
		Reason:         in.Reason,
		AssetID:        in.AssetID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// RecordExit godoc
// @Summary      Registrar salida de inventario
// @Description  Si el tipo de movimiento requiere aprobación, crea una solicitud PENDING y responde 202.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordExitRequest  true  "pin, sku_id, location_id, quantity, movement_type_id"
// @Success      201   {object}  dto.MovementResponse
// @Success      202   {object}  dto.ApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.RecordExitRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	input := inventory.ExitInput{
		ActorID:        GetActorID(c),
		PIN:            in.PIN,
		SKUID:          in.SKUID,
		LocationID:     in.LocationID,
		Quantity:       in.Quantity,
		MovementTypeID: in.MovementTypeID,
		Reason:         in.Reason,
		AssetID:        in.AssetID,
	}
	m, req, err := h.workflow.SubmitExit(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	if req != nil {
		return c.Status(fiber.StatusAccepted).JSON(toApprovalResponse(req))
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// GetBalance godoc
// @Summary      Saldo de un SKU en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sku_id       path  string  true  "SKU"
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/inventory/balances/{sku_id}/{location_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	b, err := h.ledger.GetBalance(c.UserContext(), c.Params("sku_id"), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBalanceResponse(b))
}

// ListBalances godoc
// @Summary      Listar saldos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sku_id        query  string  false  "Filtrar por SKU"
// @Param        location_id   query  string  false  "Filtrar por ubicación"
// @Param        include_zero  query  bool    false  "Incluir saldos en cero"
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	var q dto.BalanceQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	q.DefaultPage()
	list, err := h.ledger.ListBalances(c.UserContext(), repository.BalanceFilter{
		SKUID:       q.SKUID,
		LocationID:  q.LocationID,
		IncludeZero: q.IncludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		items = append(items, toBalanceResponse(b))
	}
	return c.JSON(dto.BalanceListResponse{Items: items, Page: q.Response(len(items))})
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Description  Más recientes primero. Fechas en RFC3339.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sku_id            query  string  false  "SKU"
// @Param        location_id       query  string  false  "Ubicación (origen o destino)"
// @Param        movement_type_id  query  string  false  "Tipo de movimiento"
// @Param        from              query  string  false  "Desde (RFC3339)"
// @Param        to                query  string  false  "Hasta (RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	q.DefaultPage()
	filter := repository.MovementFilter{
		SKUID:          q.SKUID,
		LocationID:     q.LocationID,
		MovementTypeID: q.MovementTypeID,
		Limit:          q.Limit,
		Offset:         q.Offset,
	}
	var err error
	if filter.From, err = parseTime(q.From); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = parseTime(q.To); err != nil {
		return respondError(c, err)
	}
	list, err := h.ledger.ListMovements(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: q.Response(len(items))})
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.ledger.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponse(m))
}

// GetReceipt godoc
// @Summary      Comprobante PDF de un movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/receipt [get]
func (h *InventoryHandler) GetReceipt(c *fiber.Ctx) error {
	if h.receipts == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "comprobantes no configurados"})
	}
	r, err := h.ledger.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	pdf, err := h.receipts.Render(c.UserContext(), r)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="movimiento-`+r.Movement.ID+`.pdf"`)
	return c.Send(pdf)
}

// RequestReversal godoc
// @Summary      Solicitar reversión de un movimiento
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del movimiento"
// @Param        body  body  dto.RequestReversalRequest  true  "pin, reason"
// @Success      202   {object}  dto.ApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reversal-requests [post]
func (h *InventoryHandler) RequestReversal(c *fiber.Ctx) error {
	var in dto.RequestReversalRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	req, err := h.workflow.RequestReversal(c.UserContext(), GetActorID(c), in.PIN, c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(toApprovalResponse(req))
}

func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, &validationError{fields: map[string]string{"date": "rfc3339"}}
	}
	return &t, nil
}
