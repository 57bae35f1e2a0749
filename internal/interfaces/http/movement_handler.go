package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
)

// HeaderIdempotencyKey id de solicitud opcional; un reenvío con la misma clave se rechaza con 409.
const HeaderIdempotencyKey = "Idempotency-Key"

// MovementHandler colocaciones, traslados y ventas (protegido).
type MovementHandler struct {
	uc       *usecase.MovementUseCase
	query    *usecase.StockUseCase
	receipts *usecase.ReceiptUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *usecase.MovementUseCase, query *usecase.StockUseCase, receipts *usecase.ReceiptUseCase) *MovementHandler {
	return &MovementHandler{uc: uc, query: query, receipts: receipts}
}

func actor(c *fiber.Ctx) usecase.Actor {
	return usecase.Actor{UserID: GetUserID(c), RequestID: c.Get(HeaderIdempotencyKey)}
}

// Place godoc
// @Summary      Colocar ítems de factura en almacenes
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Id de solicitud"
// @Param        body             body    dto.PlacementRequest  true   "invoice_id e ítems por almacén"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/placements [post]
func (h *MovementHandler) Place(c *fiber.Ctx) error {
	var in dto.PlacementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Place(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Traslado de almacén a tienda
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Id de solicitud"
// @Param        body             body    dto.TransferRequest  true   "Origen, destino e ítems"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *MovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Transfer(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetTransfer godoc
// @Summary      Obtener traslado
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *MovementHandler) GetTransfer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c, "id")
	}
	out, err := h.query.GetTransfer(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "traslado no encontrado")
	}
	return c.JSON(out)
}

// UpdateTransfer godoc
// @Summary      Editar traslado (revierte los ítems actuales y aplica los nuevos)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del traslado"
// @Param        body  body  dto.TransferRequest  true  "Nuevos ítems"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [put]
func (h *MovementHandler) UpdateTransfer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c, "id")
	}
	var in dto.TransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateTransfer(c.UserContext(), actor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RevertTransfer godoc
// @Summary      Anular traslado (devuelve la mercancía a los lotes de origen)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [delete]
func (h *MovementHandler) RevertTransfer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c, "id")
	}
	out, err := h.uc.RevertTransfer(c.UserContext(), actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sell godoc
// @Summary      Registrar venta en tienda
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string           false  "Id de solicitud"
// @Param        body             body    dto.SaleRequest  true   "Tienda, ítems y forma de pago"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *MovementHandler) Sell(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if !CanOperateShop(c, in.ShopID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a la tienda " + in.ShopID})
	}
	out, err := h.uc.Sell(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSale godoc
// @Summary      Obtener venta
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *MovementHandler) GetSale(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c, "id")
	}
	out, err := h.query.GetSale(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil || !CanOperateShop(c, out.ShopID) {
		return notFound(c, "venta no encontrada")
	}
	return c.JSON(out)
}

// SaleReceipt godoc
// @Summary      Comprobante de venta en PDF
// @Tags         movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *MovementHandler) SaleReceipt(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c, "id")
	}
	doc, sale, err := h.receipts.SaleReceipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	if sale == nil || !CanOperateShop(c, sale.Shop.ID) {
		return notFound(c, "venta no encontrada")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+sale.Number+`.pdf"`)
	return c.Send(doc)
}
