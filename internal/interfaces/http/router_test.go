package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tiendas-api/internal/application/auth"
	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/application/usecase"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Tiendas-api/internal/interfaces/http"
)

// newAPI arma el router completo sobre el almacenamiento en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	svc := inventory.NewMovementService(store, memory.NewSequence(), memory.NewIdempotency(time.Hour), zerolog.Nop(), inventory.ServiceConfig{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}),
		ProductUC:  usecase.NewProductUseCase(repos.Products),
		LocationUC: usecase.NewLocationUseCase(repos.Locations),
		InvoiceUC:  usecase.NewInvoiceUseCase(store, repos.Invoices),
		MovementUC: usecase.NewMovementUseCase(svc),
		StockUC:    usecase.NewStockUseCase(repos.Stock, repos.Locations, repos.Activities, repos.Transfers, repos.Sales, zerolog.Nop()),
		ReceiptUC:  usecase.NewReceiptUseCase(repos.Sales, repos.Locations, repos.Products, pdf.NewReceiptGenerator()),
		JWTSecret:  testJWTSecret,
	})
	return app
}

type call struct {
	method, path, token string
	body                any
	headers             map[string]string
}

// do ejecuta la petición y decodifica la respuesta en out (si no es nil).
func do(t *testing.T, app *fiber.App, c call, out any) int {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seedCatalog crea producto (paquete de 10), almacén, tienda y 30 piezas colocadas en el almacén.
func seedCatalog(t *testing.T, app *fiber.App, admin string) string {
	t.Helper()
	var product dto.ProductResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/products", token: admin, body: fiber.Map{
		"sku": "CUA-100", "name": "Cuaderno", "pieces_per_pack": 10, "price": "2.10", "tax_rate": "0.16",
	}}, &product))
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/stores", token: admin,
		body: fiber.Map{"id": "store-1", "name": "Central"}}, nil))
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/shops", token: admin,
		body: fiber.Map{"id": "shop-1", "name": "Centro"}}, nil))

	var invoice dto.SupplierInvoiceResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/invoices", token: admin, body: fiber.Map{
		"number": "F-001", "supplier_name": "Papelera SA",
		"items": []fiber.Map{{"product_id": product.ID, "batch_number": "L-1", "invoiced_pieces": 30}},
	}}, &invoice))
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, int64(10), invoice.Items[0].PackSize)

	var placed dto.MovementResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/placements", token: admin, body: fiber.Map{
		"invoice_id": invoice.ID,
		"items":      []fiber.Map{{"invoice_item_id": invoice.Items[0].ID, "store_id": "store-1", "packs": 3}},
	}}, &placed))
	require.Len(t, placed.Records, 1)
	assert.Equal(t, int64(30), placed.Records[0].TotalQuantity)
	return product.ID
}

func TestAPI_TrasladoYVenta(t *testing.T) {
	app := newAPI(t)
	admin := tokenFor(t, "admin")
	pid := seedCatalog(t, app, admin)

	var moved dto.MovementResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: fiber.Map{
		"from_store_id": "store-1", "to_shop_id": "shop-1",
		"items": []fiber.Map{{"product_id": pid, "packs": 2, "pieces": 5}},
	}}, &moved))
	assert.Equal(t, "TRF-000001", moved.Number)
	assert.Len(t, moved.Records, 2)

	var rec dto.LocationInventoryResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/inventory/store/store-1/" + pid, token: admin}, &rec))
	assert.Equal(t, int64(5), rec.TotalQuantity)
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/inventory/shop/shop-1/" + pid, token: admin}, &rec))
	assert.Equal(t, int64(25), rec.TotalQuantity)
	require.Len(t, rec.Entries, 1)
	assert.Equal(t, moved.ID, rec.Entries[0].SourceTransferID)

	cashier := tokenFor(t, "cashier", "shop-1")
	var failed dto.ErrorResponse
	require.Equal(t, http.StatusConflict, do(t, app, call{method: http.MethodPost, path: "/api/sales", token: cashier, body: fiber.Map{
		"shop_id": "shop-1", "payment_method": "cash", "items": []fiber.Map{{"product_id": pid, "pieces": 30}},
	}}, &failed))
	assert.Equal(t, "INSUFFICIENT_STOCK", failed.Code)
	require.NotNil(t, failed.Details)
	require.NotNil(t, failed.Details.Item)
	assert.Equal(t, 0, *failed.Details.Item)
	assert.Equal(t, int64(30), failed.Details.Requested)
	assert.Equal(t, int64(25), failed.Details.Available)
	assert.Equal(t, int64(5), failed.Details.Shortfall)

	var sold dto.MovementResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/sales", token: cashier, body: fiber.Map{
		"shop_id": "shop-1", "payment_method": "cash", "items": []fiber.Map{{"product_id": pid, "pieces": 5}},
	}}, &sold))
	require.NotNil(t, sold.Sale)
	assert.Equal(t, "SALE-000001", sold.Number)
	assert.True(t, decimal.RequireFromString("10.50").Equal(sold.Sale.Subtotal))
	assert.True(t, decimal.RequireFromString("12.18").Equal(sold.Sale.Total))

	var sale dto.SaleResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/sales/" + sold.ID, token: cashier}, &sale))
	assert.Equal(t, "shop-1", sale.ShopID)

	req := httptest.NewRequest(http.MethodGet, "/api/sales/"+sold.ID+"/receipt", nil)
	req.Header.Set("Authorization", cashier)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, http.StatusNotFound, do(t, app, call{method: http.MethodGet,
		path: "/api/sales/" + sold.ID + "/receipt", token: tokenFor(t, "cashier", "shop-2")}, nil))

	var acts dto.ActivityListResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet,
		path: "/api/activities?location_kind=shop&location_id=shop-1", token: admin}, &acts))
	require.Len(t, acts.Items, 2)
	assert.Equal(t, "sale", acts.Items[0].Type)
	assert.Equal(t, "receipt", acts.Items[1].Type)

	var verify dto.VerifyLocationResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/inventory/shop/shop-1/verify", token: admin}, &verify))
	assert.True(t, verify.Consistent)
	assert.Equal(t, 1, verify.Checked)
}

func TestAPI_AnularTraslado(t *testing.T) {
	app := newAPI(t)
	keeper := tokenFor(t, "storekeeper")
	pid := seedCatalog(t, app, tokenFor(t, "admin"))

	var moved dto.MovementResponse
	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: keeper, body: fiber.Map{
		"from_store_id": "store-1", "to_shop_id": "shop-1", "items": []fiber.Map{{"product_id": pid, "packs": 1}},
	}}, &moved))

	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodDelete, path: "/api/transfers/" + moved.ID, token: keeper}, nil))

	var rec dto.LocationInventoryResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/inventory/store/store-1/" + pid, token: keeper}, &rec))
	assert.Equal(t, int64(30), rec.TotalQuantity)

	var tr dto.TransferResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodGet, path: "/api/transfers/" + moved.ID, token: keeper}, &tr))
	assert.Equal(t, "cancelled", tr.Status)
	assert.Equal(t, 2, tr.Version)

	var failed dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, do(t, app, call{method: http.MethodDelete, path: "/api/transfers/" + moved.ID, token: keeper}, &failed))
	assert.Equal(t, "CONFLICT", failed.Code)

	assert.Equal(t, http.StatusNotFound, do(t, app, call{method: http.MethodDelete, path: "/api/transfers/no-existe", token: keeper}, nil))
}

func TestAPI_ErroresYPermisos(t *testing.T) {
	app := newAPI(t)
	admin := tokenFor(t, "admin")
	pid := seedCatalog(t, app, admin)
	transfer := fiber.Map{"from_store_id": "store-1", "to_shop_id": "shop-1", "items": []fiber.Map{{"product_id": pid, "pieces": 1}}}

	var failed dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: fiber.Map{
		"from_store_id": "store-9", "to_shop_id": "shop-1", "items": []fiber.Map{{"product_id": pid, "pieces": 1}},
	}}, &failed))
	assert.Equal(t, "LOCATION_NOT_FOUND", failed.Code)

	assert.Equal(t, http.StatusNotFound, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: fiber.Map{
		"from_store_id": "store-1", "to_shop_id": "shop-1", "items": []fiber.Map{{"product_id": "nope", "pieces": 1}},
	}}, &failed))
	assert.Equal(t, "PRODUCT_NOT_FOUND", failed.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: fiber.Map{
		"from_store_id": "store-1", "to_shop_id": "shop-1", "items": []fiber.Map{{"product_id": pid, "pieces": -1}},
	}}, &failed))
	assert.Equal(t, "VALIDATION", failed.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, app, call{method: http.MethodPost, path: "/api/sales", token: admin, body: fiber.Map{
		"shop_id": "shop-1", "payment_method": "bitcoin", "items": []fiber.Map{{"product_id": pid, "pieces": 1}},
	}}, &failed))
	assert.Equal(t, "VALIDATION", failed.Code)

	// Idempotency-Key repetida.
	key := map[string]string{apphttp.HeaderIdempotencyKey: "req-1"}
	assert.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: transfer, headers: key}, nil))
	assert.Equal(t, http.StatusConflict, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: admin, body: transfer, headers: key}, &failed))
	assert.Equal(t, "DUPLICATE_REQUEST", failed.Code)

	// Roles y alcance por tienda.
	cashier := tokenFor(t, "cashier", "shop-2")
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/transfers", token: cashier, body: transfer}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/sales", token: cashier, body: fiber.Map{
		"shop_id": "shop-1", "payment_method": "cash", "items": []fiber.Map{{"product_id": pid, "pieces": 1}},
	}}, nil))
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodGet, path: "/api/inventory/store/store-1/verify", token: cashier}, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, call{method: http.MethodGet, path: "/api/products"}, nil))

	assert.Equal(t, http.StatusBadRequest, do(t, app, call{method: http.MethodGet, path: "/api/inventory/warehouse/w-1", token: admin}, nil))
}

func TestAPI_LoginYAltaDeUsuarios(t *testing.T) {
	app := newAPI(t)
	admin := tokenFor(t, "admin")

	require.Equal(t, http.StatusCreated, do(t, app, call{method: http.MethodPost, path: "/api/users", token: admin, body: fiber.Map{
		"email": "caja@tiendas.mx", "password": "secreto123", "role": "cashier", "shop_ids": []string{"shop-1"},
	}}, nil))
	assert.Equal(t, http.StatusConflict, do(t, app, call{method: http.MethodPost, path: "/api/users", token: admin, body: fiber.Map{
		"email": "caja@tiendas.mx", "password": "secreto123", "role": "cashier",
	}}, nil))

	var login dto.LoginResponse
	require.Equal(t, http.StatusOK, do(t, app, call{method: http.MethodPost, path: "/api/auth/login", body: fiber.Map{
		"email": "caja@tiendas.mx", "password": "secreto123",
	}}, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, []string{"shop-1"}, login.User.ShopIDs)

	assert.Equal(t, http.StatusUnauthorized, do(t, app, call{method: http.MethodPost, path: "/api/auth/login", body: fiber.Map{
		"email": "caja@tiendas.mx", "password": "incorrecta",
	}}, nil))
	// Un cajero no puede crear usuarios.
	assert.Equal(t, http.StatusForbidden, do(t, app, call{method: http.MethodPost, path: "/api/users", token: "Bearer " + login.Token, body: fiber.Map{
		"email": "otro@tiendas.mx", "password": "secreto123", "role": "admin",
	}}, nil))
}
