package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
)

// MovementTypeHandler administra los tipos de movimiento (solo admin).
type MovementTypeHandler struct {
	uc *usecase.MovementTypeUseCase
}

// NewMovementTypeHandler construye el handler.
func NewMovementTypeHandler(uc *usecase.MovementTypeUseCase) *MovementTypeHandler {
	return &MovementTypeHandler{uc: uc}
}

// Create crea un tipo de movimiento.
// POST /api/movement-types
func (h *MovementTypeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementTypeRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/movement-types
func (h *MovementTypeHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": list})
}

// GetByID GET /api/movement-types/:id
func (h *MovementTypeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update actualiza solo los campos presentes en el body.
// PUT /api/movement-types/:id
func (h *MovementTypeHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementTypeRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete falla con 409 IN_USE si algún movimiento referencia el tipo.
// DELETE /api/movement-types/:id
func (h *MovementTypeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
