package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shubz284/biryani-house/internal/catalog"
	"github.com/Shubz284/biryani-house/internal/events"
	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/orders"
	"github.com/Shubz284/biryani-house/internal/store"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	router *gin.Engine
	mem    *store.Memory
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seq := 0
	mem := store.NewMemoryWithIDs(func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	})
	return newFixtureWith(mem, mem)
}

func newFixtureWith(mem *store.Memory, menu store.MenuRepository) *fixture {
	rec := &events.Recorder{}
	srv := NewServer(
		catalog.NewService(menu),
		orders.NewManager(mem, orders.Validator{VerifyTotal: true}, rec),
		orders.NewQuery(mem, menu),
	)
	srv.now = func() time.Time { return t0 }
	return &fixture{
		router: srv.Router(Options{BasePath: "/api", CORSOrigins: []string{"http://localhost:5173"}}),
		mem:    mem,
		events: rec,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) seedMenu(t *testing.T) (biryani, lassi models.MenuItem) {
	t.Helper()
	ctx := context.Background()
	var err error
	biryani, err = f.mem.InsertMenuItem(ctx, models.MenuItem{
		Name:        "Hyderabadi Chicken Dum Biryani",
		Description: "Fragrant basmati rice layered with spiced chicken",
		Price:       decimal.NewFromInt(249),
		Category:    models.CategoryBiryani,
		ImageURL:    "https://example.com/biryani.jpg",
		Available:   true,
		SpiceLevel:  models.SpiceHot,
		IsFeatured:  true,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	})
	require.NoError(t, err)
	lassi, err = f.mem.InsertMenuItem(ctx, models.MenuItem{
		Name:         "Mango Lassi",
		Description:  "Chilled yogurt drink with Alphonso mango",
		Price:        decimal.RequireFromString("79.5"),
		Category:     models.CategoryBeverages,
		ImageURL:     "https://example.com/lassi.jpg",
		Available:    true,
		IsVegetarian: true,
		CreatedAt:    t0.Add(time.Hour),
		UpdatedAt:    t0.Add(time.Hour),
	})
	require.NoError(t, err)
	return biryani, lassi
}

func assertGolden(t *testing.T, name string, body []byte) {
	t.Helper()
	var pretty bytes.Buffer
	require.NoError(t, json.Indent(&pretty, body, "", "  "))
	pretty.WriteByte('\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, pretty.Bytes())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func orderBody(phone, status string, menuItemID string) string {
	return fmt.Sprintf(`{
		"customer_name": "Asha Rao",
		"customer_phone": %q,
		"delivery_address": "12 MG Road, Bengaluru",
		"total_amount": 355,
		"status": %q,
		"items": [{"menu_item_id": %q, "menu_item_name": "Veg Biryani", "quantity": 2, "price": 150, "subtotal": 300}]
	}`, phone, status, menuItemID)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Biryani House API is running", body["message"])
	assert.Equal(t, "2026-03-01T12:00:00Z", body["timestamp"])
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/reservations", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertGolden(t, "route_not_found", w.Body.Bytes())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/health", "")

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListMenuItems(t *testing.T) {
	f := newFixture(t)
	f.seedMenu(t)

	w := f.do(t, http.MethodGet, "/api/menu-items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assertGolden(t, "menu_list", w.Body.Bytes())

	w = f.do(t, http.MethodGet, "/api/menu-items?category=biryani&is_featured=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]models.MenuItem](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "id-1", items[0].ID)

	w = f.do(t, http.MethodGet, "/api/menu-items?category=pizza&available=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode[errorResponse](t, w).Issues, 2)
}

func TestMenuItemCRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/menu-items", `{
		"name": "Paneer Tikka Biryani",
		"description": "Smoky paneer with saffron rice",
		"price": 229,
		"category": "biryani",
		"is_vegetarian": true
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.MenuItem](t, w)
	assert.Equal(t, models.SpiceNone, created.SpiceLevel)
	assert.Equal(t, models.DefaultImageURL, created.ImageURL)

	w = f.do(t, http.MethodPut, "/api/menu-items/"+created.ID, `{"price": "199", "available": false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.MenuItem](t, w)
	assert.Equal(t, "199", updated.Price.String())
	assert.False(t, updated.Available)

	w = f.do(t, http.MethodPut, "/api/menu-items/"+created.ID, `{"category": "pizza"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/api/menu-items/missing", `{"price": 10}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Menu item not found", decode[errorResponse](t, w).Error)

	w = f.do(t, http.MethodDelete, "/api/menu-items/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, `"Menu item deleted successfully"`, string(deleted["message"]))
	assert.Contains(t, string(deleted["menu_item"]), created.ID)

	w = f.do(t, http.MethodDelete, "/api/menu-items/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodGet, "/api/menu-items/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMenuItem_Invalid(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/menu-items", `{"name": "", "price": -4, "category": "dessert"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode[errorResponse](t, w).Issues, 4)

	w = f.do(t, http.MethodPost, "/api/menu-items", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", decode[errorResponse](t, w).Issues[0].Field)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/orders", `{
		"customer_name": "Asha Rao",
		"customer_phone": "9876543210",
		"delivery_address": "12 MG Road",
		"total_amount": 0,
		"items": []
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assertGolden(t, "create_order_empty_items", w.Body.Bytes())

	all, err := f.mem.ListOrders(context.Background(), models.OrderFilter{}, models.DefaultOrderSort)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.events.Events())
}

func TestCreateOrder_AggregatedIssues(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/orders", `{
		"customer_name": "",
		"customer_phone": "12345",
		"delivery_address": "",
		"total_amount": "abc",
		"items": [{"menu_item_id": "id-1", "menu_item_name": "Raita", "quantity": 0, "price": 49, "subtotal": 49}]
	}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assertGolden(t, "create_order_invalid", w.Body.Bytes())
}

func TestCreateOrder_ForcesPendingAndJoinsMenu(t *testing.T) {
	f := newFixture(t)
	biryani, _ := f.seedMenu(t)

	w := f.do(t, http.MethodPost, "/api/orders", orderBody("9876543210", "delivered", biryani.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Order](t, w)
	assert.Equal(t, models.OrderStatusPending, created.Status)

	w = f.do(t, http.MethodGet, "/api/orders/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status string `json:"status"`
		Items  []struct {
			MenuItemName string           `json:"menu_item_name"`
			MenuItem     *models.MenuItem `json:"menu_item"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "pending", view.Status)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Veg Biryani", view.Items[0].MenuItemName)
	require.NotNil(t, view.Items[0].MenuItem)
	assert.Equal(t, biryani.Name, view.Items[0].MenuItem.Name)
	assert.Equal(t, []string{events.OrderCreated}, f.events.Types())
}

func TestCreateOrder_PhoneDigits(t *testing.T) {
	f := newFixture(t)
	for phone, want := range map[string]int{
		"987654321":   http.StatusBadRequest,
		"98765432100": http.StatusBadRequest,
		"9876543210":  http.StatusCreated,
	} {
		w := f.do(t, http.MethodPost, "/api/orders", orderBody(phone, "", "id-99"))
		assert.Equal(t, want, w.Code, phone)
	}
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	for _, phone := range []string{"9876543210", "9123456789"} {
		w := f.do(t, http.MethodPost, "/api/orders", orderBody(phone, "", "id-99"))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/orders?customer_phone=9123456789", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]models.Order](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, "9123456789", listed[0].CustomerPhone)

	w = f.do(t, http.MethodGet, "/api/orders?sort=-total_amount&status=pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 2)

	w = f.do(t, http.MethodGet, "/api/orders?sort=customer_name", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/orders?status=shipped", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetOrderStatus(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/orders", orderBody("9876543210", "", "id-99"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Order](t, w).ID

	for _, status := range []string{"confirmed", "preparing", "out_for_delivery", "delivered", "cancelled", "pending"} {
		w = f.do(t, http.MethodPatch, "/api/orders/"+id+"/status", fmt.Sprintf(`{"status": %q}`, status))
		require.Equal(t, http.StatusOK, w.Code, status)
		assert.Equal(t, status, decode[map[string]any](t, w)["status"])
	}

	w = f.do(t, http.MethodPatch, "/api/orders/"+id+"/status", `{"status": "shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPatch, "/api/orders/"+id+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", decode[errorResponse](t, w).Issues[0].Message)

	for body, want := range map[string]models.FieldIssue{
		`{"status": 5}`:           {Field: "status", Message: "Status must be a string"},
		`{"status": ["pending"]}`: {Field: "status", Message: "Status must be a string"},
		`{"status": ""}`:          {Field: "status", Message: "Status is required"},
		`["confirmed"]`:           {Field: "body", Message: "Request body must be a valid JSON object"},
		`{"status": "confirmed"`:  {Field: "body", Message: "Request body must be a valid JSON object"},
	} {
		w = f.do(t, http.MethodPatch, "/api/orders/"+id+"/status", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, []models.FieldIssue{want}, decode[errorResponse](t, w).Issues, body)
	}

	w = f.do(t, http.MethodPatch, "/api/orders/missing/status", `{"status": "confirmed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decode[errorResponse](t, w).Error)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/orders", orderBody("9876543210", "", "id-99"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Order](t, w).ID

	w = f.do(t, http.MethodDelete, "/api/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/api/orders/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, `"Order deleted successfully"`, string(body["message"]))

	w = f.do(t, http.MethodGet, "/api/orders/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// unavailableMenu fails every listing as the document store would when it is
// unreachable.
type unavailableMenu struct {
	*store.Memory
}

func (unavailableMenu) ListMenuItems(context.Context, models.MenuFilter) ([]models.MenuItem, error) {
	return nil, &models.TransientError{Op: "menu.list", Err: errors.New("server selection timeout")}
}

func TestTransientStoreErrorIs503(t *testing.T) {
	mem := store.NewMemory()
	f := newFixtureWith(mem, unavailableMenu{mem})

	w := f.do(t, http.MethodGet, "/api/menu-items", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "server selection timeout")
}
