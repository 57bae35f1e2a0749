package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// LocationHandler almacenes y tiendas.
type LocationHandler struct {
	uc *usecase.LocationUseCase
}

func NewLocationHandler(uc *usecase.LocationUseCase) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// CreateStore godoc
// @Summary      Crear almacén
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStoreRequest  true  "Datos del almacén"
// @Success      201   {object}  dto.LocationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stores [post]
func (h *LocationHandler) CreateStore(c *fiber.Ctx) error {
	var in dto.CreateStoreRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateStore(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListStores godoc
// @Summary      Listar almacenes
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LocationListResponse
// @Router       /api/stores [get]
func (h *LocationHandler) ListStores(c *fiber.Ctx) error {
	out, err := h.uc.ListStores(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateShop godoc
// @Summary      Crear tienda
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShopRequest  true  "Datos de la tienda"
// @Success      201   {object}  dto.LocationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shops [post]
func (h *LocationHandler) CreateShop(c *fiber.Ctx) error {
	var in dto.CreateShopRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateShop(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListShops godoc
// @Summary      Listar tiendas
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LocationListResponse
// @Router       /api/shops [get]
func (h *LocationHandler) ListShops(c *fiber.Ctx) error {
	out, err := h.uc.ListShops(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener almacén o tienda
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{id} [get]
// @Router       /api/shops/{id} [get]
func (h *LocationHandler) Get(kind entity.LocationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return missingID(c, "id")
		}
		out, err := h.uc.Get(c.UserContext(), entity.LocationRef{Kind: kind, ID: id})
		if err != nil {
			return writeError(c, err)
		}
		if out == nil {
			return notFound(c, "ubicación no encontrada")
		}
		return c.JSON(out)
	}
}
