package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

var validate = validator.New()

// validationError campos que no pasaron validator/v10 (campo -> regla).
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string { return "validación fallida" }

// bindBody parsea el JSON y lo valida con las etiquetas `validate`.
func bindBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &validationError{fields: map[string]string{"body": "json"}}
	}
	return check(dst)
}

// bindQuery parsea los query params y los valida.
func bindQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return &validationError{fields: map[string]string{"query": "format"}}
	}
	return check(dst)
}

func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	return &validationError{fields: fields}
}

// respondError traduce errores de dominio a HTTP. Lo no reconocido es 500.
func respondError(c *fiber.Ctx, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "datos inválidos", Fields: ve.fields,
		})
	}
	if available, ok := domain.AvailableStock(err); ok {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente", Available: &available,
		})
	}

	status, body := classify(err)
	if status >= fiber.StatusInternalServerError {
		c.Locals(localError, err)
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidSecret):
		// Mismo mensaje exista o no el actor.
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_PIN", Message: domain.ErrInvalidSecret.Error()}
	case errors.Is(err, domain.ErrSelfApproval):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "SELF_APPROVAL", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyReverted):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_REVERTED", Message: err.Error()}
	case errors.Is(err, domain.ErrWrongType):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "WRONG_TYPE", Message: err.Error()}
	case errors.Is(err, domain.ErrInUse):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "IN_USE", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error(), Retryable: true}
	case errors.Is(err, domain.ErrConfigurationMissing):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "CONFIGURATION_MISSING", Message: err.Error()}
	case errors.Is(err, auth.ErrPINSpaceExhausted):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "PIN_UNAVAILABLE", Message: err.Error(), Retryable: true}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}
