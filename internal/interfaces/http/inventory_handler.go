package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// InventoryHandler consultas de stock por ubicación e historial de movimientos (protegido).
type InventoryHandler struct {
	uc *usecase.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// locationParam lee :kind y :locationId; kind inválido responde 400.
func locationParam(c *fiber.Ctx) (entity.LocationRef, bool) {
	ref := entity.LocationRef{Kind: entity.LocationKind(c.Params("kind")), ID: c.Params("locationId")}
	return ref, ref.Valid()
}

func invalidLocation(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ubicación inválida: use store o shop"})
}

// ListRecords godoc
// @Summary      Inventario de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind        path   string  true   "store | shop"
// @Param        locationId  path   string  true   "ID de la ubicación"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LocationInventoryListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{locationId} [get]
func (h *InventoryHandler) ListRecords(c *fiber.Ctx) error {
	loc, ok := locationParam(c)
	if !ok {
		return invalidLocation(c)
	}
	out, err := h.uc.ListRecords(c.UserContext(), loc, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRecord godoc
// @Summary      Registro de un producto en una ubicación (total + lotes FIFO)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind        path  string  true  "store | shop"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Param        productId   path  string  true  "ID del producto"
// @Success      200  {object}  dto.LocationInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{locationId}/{productId} [get]
func (h *InventoryHandler) GetRecord(c *fiber.Ctx) error {
	loc, ok := locationParam(c)
	if !ok {
		return invalidLocation(c)
	}
	out, err := h.uc.GetRecord(c.UserContext(), loc, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return notFound(c, "el producto no tiene registro en esta ubicación")
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar consistencia de una ubicación (solo admin)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind        path  string  true  "store | shop"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.VerifyLocationResponse
// @Router       /api/inventory/{kind}/{locationId}/verify [get]
func (h *InventoryHandler) Verify(c *fiber.Ctx) error {
	loc, ok := locationParam(c)
	if !ok {
		return invalidLocation(c)
	}
	out, err := h.uc.VerifyLocation(c.UserContext(), loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListActivities godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_kind  query  string  false  "store | shop"
// @Param        location_id    query  string  false  "ID de la ubicación"
// @Param        product_id     query  string  false  "ID del producto"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        limit          query  int     false  "Límite"  default(50)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ActivityListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/activities [get]
func (h *InventoryHandler) ListActivities(c *fiber.Ctx) error {
	q := usecase.ActivityQuery{
		ProductID: c.Query("product_id"),
		Limit:     c.QueryInt("limit"),
		Offset:    c.QueryInt("offset"),
	}
	if kind, id := c.Query("location_kind"), c.Query("location_id"); kind != "" || id != "" {
		q.Location = &entity.LocationRef{Kind: entity.LocationKind(kind), ID: id}
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		key, dst := p.key, p.dst
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: key + " debe ser RFC3339"})
		}
		*dst = &t
	}
	out, err := h.uc.ListActivities(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
