package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
)

// ActorHandler operaciones administrativas sobre actores.
type ActorHandler struct {
	pins *auth.PINService
}

// NewActorHandler construye el handler.
func NewActorHandler(pins *auth.PINService) *ActorHandler {
	return &ActorHandler{pins: pins}
}

// IssuePIN godoc
// @Summary      Emitir un PIN nuevo para un actor
// @Description  El PIN en texto plano solo se devuelve en esta respuesta. Solo admin.
// @Tags         actors
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del actor"
// @Success      201  {object}  dto.IssuePINResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/actors/{id}/pin [post]
func (h *ActorHandler) IssuePIN(c *fiber.Ctx) error {
	actorID := c.Params("id")
	pin, err := h.pins.IssuePIN(c.UserContext(), GetActorID(c), actorID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusCreated).JSON(dto.IssuePINResponse{ActorID: actorID, PIN: pin})
}
