package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/domain"
)

var validate = validator.New()

// errorMapping sentinela -> (status, código). El orden importa: el primero que coincide gana.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrDeductionInvariant, fiber.StatusInternalServerError, "INTERNAL"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrLocationNotFound, fiber.StatusNotFound, "LOCATION_NOT_FOUND"},
	{domain.ErrMovementNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrPlacementExceedsInvoice, fiber.StatusConflict, "PLACEMENT_EXCEEDS_INVOICE"},
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrPersistenceConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrPersistenceTimeout, fiber.StatusGatewayTimeout, "PERSISTENCE_TIMEOUT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// writeError traduce un error de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			status, code = m.status, m.code
			break
		}
	}
	resp := dto.ErrorResponse{Code: code, Message: err.Error()}
	if status == fiber.StatusInternalServerError {
		// Las violaciones de invariante y fallos de infraestructura no se exponen.
		resp.Message = "error interno"
		return c.Status(status).JSON(resp)
	}
	var me *domain.MovementError
	if errors.As(err, &me) {
		d := &dto.ErrorDetails{
			ProductID:   me.ProductID,
			ProductName: me.ProductName,
			Location:    me.Location,
			Requested:   me.Requested,
			Available:   me.Available,
			Shortfall:   me.Shortfall(),
		}
		if me.Item >= 0 {
			item := me.Item
			d.Item = &item
		}
		resp.Details = d
	}
	return c.Status(status).JSON(resp)
}

// parseBody decodifica y valida el cuerpo. Si falla ya escribió la respuesta 400 y ok es false.
func parseBody(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		resp := dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+":"+fe.Tag())
			}
			resp.Details = &dto.ErrorDetails{Fields: fields}
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return true, nil
}

func missingID(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: name + " es requerido"})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: msg})
}
