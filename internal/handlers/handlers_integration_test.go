package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"fulfillment/internal/app"
	"fulfillment/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// setupApp builds the full application on a private in-memory database.
func setupApp(t *testing.T, overrides map[string]interface{}) *app.App {
	t.Helper()

	v := viper.New()
	v.Set("DATABASE_DRIVER", "sqlite")
	v.Set("DATABASE_DSN", "file:"+strings.ReplaceAll(uuid.NewString(), "-", "")+"?mode=memory&cache=shared&_busy_timeout=5000")
	v.Set("JWT_SECRET", "test_jwt_secret")
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.Load(v)
	require.NoError(t, err)

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

type response struct {
	status int
	header http.Header
	body   map[string]interface{}
	raw    []byte
}

func doJSON(t *testing.T, a *app.App, method, path string, payload interface{}, headers map[string]string) response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.Fiber.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, header: resp.Header, raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func addItem(t *testing.T, a *app.App, id, name string, price float64) {
	t.Helper()
	resp := doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{
		"item_id": id, "name": name, "price": price, "description": name + " description",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.raw))
}

func addToCart(t *testing.T, a *app.App, userID, itemID string, qty int) {
	t.Helper()
	resp := doJSON(t, a, http.MethodPost, "/cart/add", map[string]interface{}{
		"user_id": userID, "item_id": itemID, "quantity": qty,
	}, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.raw))
}

func generateCode(t *testing.T, a *app.App, percentage float64, headers map[string]string) string {
	t.Helper()
	resp := doJSON(t, a, http.MethodPost, "/admin/discount", map[string]interface{}{
		"discount_percentage": percentage,
	}, headers)
	require.Equal(t, http.StatusOK, resp.status, string(resp.raw))
	assert.Equal(t, "Discount code generated.", resp.body["message"])
	return resp.body["code"].(string)
}

func TestHealthCheck(t *testing.T) {
	a := setupApp(t, nil)

	resp := doJSON(t, a, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "healthy", resp.body["status"])
	assert.Equal(t, "connected", resp.body["database"])
}

func TestItemEndpoints(t *testing.T) {
	a := setupApp(t, nil)

	resp := doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{
		"item_id": "laptop", "name": "Laptop", "price": 1000, "description": "Fast",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Item 'Laptop' added successfully.", resp.body["message"])
	item := resp.body["item"].(map[string]interface{})
	assert.Equal(t, "laptop", item["item_id"])
	assert.EqualValues(t, 1000, item["price"])

	t.Run("duplicate", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{
			"item_id": "laptop", "name": "Other", "price": 1,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Item with this ID already exists.", resp.body["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{"item_id": "x"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Item ID, Name, and Price are required.", resp.body["message"])
	})

	t.Run("negative price", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{
			"item_id": "bad", "name": "Bad", "price": -5,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		r, err := a.Fiber.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodGet, "/items", nil, nil)
		assert.Equal(t, http.StatusOK, resp.status)
		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.raw, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "Laptop", items[0]["name"])
	})

	t.Run("update", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPut, "/items/laptop", map[string]interface{}{
			"name": "Laptop Pro", "price": 1200.5,
		}, nil)
		assert.Equal(t, http.StatusOK, resp.status, string(resp.raw))
		item := resp.body["item"].(map[string]interface{})
		assert.EqualValues(t, 1200.5, item["price"])

		resp = doJSON(t, a, http.MethodPut, "/items/ghost", map[string]interface{}{
			"name": "Ghost", "price": 1,
		}, nil)
		assert.Equal(t, http.StatusNotFound, resp.status)
	})
}

func TestCartEndpoints(t *testing.T) {
	a := setupApp(t, nil)
	addItem(t, a, "laptop", "Laptop", 1000)
	addItem(t, a, "mouse", "Mouse", 25.5)

	resp := doJSON(t, a, http.MethodGet, "/cart/alice", nil, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Your cart is empty.", resp.body["message"])
	assert.Empty(t, resp.body["cart"])
	assert.EqualValues(t, 0, resp.body["total_amount"])

	resp = doJSON(t, a, http.MethodPost, "/cart/add", map[string]interface{}{
		"user_id": "alice", "item_id": "laptop",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Added 1 of 'Laptop' to the cart.", resp.body["message"])

	addToCart(t, a, "alice", "mouse", 2)
	addToCart(t, a, "alice", "mouse", 2)

	resp = doJSON(t, a, http.MethodGet, "/cart/alice", nil, nil)
	assert.Equal(t, "Your cart has 2 items.", resp.body["message"])
	assert.EqualValues(t, 1102, resp.body["total_amount"])
	lines := resp.body["cart"].([]interface{})
	require.Len(t, lines, 2)
	assert.EqualValues(t, 4, lines[1].(map[string]interface{})["quantity"])

	resp = doJSON(t, a, http.MethodPost, "/cart/add", map[string]interface{}{
		"user_id": "alice", "item_id": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Item does not exist.", resp.body["message"])

	resp = doJSON(t, a, http.MethodPost, "/cart/add", map[string]interface{}{
		"user_id": "alice", "item_id": "laptop", "quantity": 0,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/cart/add", map[string]interface{}{"item_id": "laptop"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestCheckoutFlow(t *testing.T) {
	a := setupApp(t, nil)
	addItem(t, a, "laptop", "Laptop", 500)
	addToCart(t, a, "alice", "laptop", 2)
	code := generateCode(t, a, 10, nil)

	resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{
		"user_id": "alice", "discount_code": code,
	}, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.raw))
	assert.Equal(t, "Order placed successfully.", resp.body["message"])
	assert.EqualValues(t, 900, resp.body["final_amount"])
	assert.EqualValues(t, 100, resp.body["discount_amount"])
	assert.Nil(t, resp.body["new_discount_code"])
	orderID := resp.body["order_id"]

	resp = doJSON(t, a, http.MethodGet, "/cart/alice", nil, nil)
	assert.Equal(t, "Your cart is empty.", resp.body["message"])

	resp = doJSON(t, a, http.MethodGet, fmt.Sprintf("/orders/%v", orderID), nil, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "alice", resp.body["user_id"])
	assert.Equal(t, code, resp.body["discount_code"])
	lines := resp.body["items"].([]interface{})
	require.Len(t, lines, 1)
	assert.EqualValues(t, 500, lines[0].(map[string]interface{})["unit_price"])

	t.Run("reused code", func(t *testing.T) {
		addToCart(t, a, "bob", "laptop", 1)
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{
			"user_id": "bob", "discount_code": code,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Invalid or expired discount code.", resp.body["message"])

		resp = doJSON(t, a, http.MethodGet, "/cart/bob", nil, nil)
		assert.Equal(t, "Your cart has 1 items.", resp.body["message"])
	})

	t.Run("empty cart", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "carol"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Cart is empty.", resp.body["message"])
	})

	t.Run("over-long code", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{
			"user_id": "bob", "discount_code": strings.Repeat("X", 40),
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Invalid or expired discount code.", resp.body["message"])
	})

	t.Run("total above storage limit", func(t *testing.T) {
		addItem(t, a, "yacht", "Yacht", 6000000000)
		addToCart(t, a, "dave", "yacht", 2)
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "dave"}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Validation failed", resp.body["message"])
	})

	t.Run("missing user", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("unknown order", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodGet, "/orders/9999", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.status)
		resp = doJSON(t, a, http.MethodGet, "/orders/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("stats", func(t *testing.T) {
		resp := doJSON(t, a, http.MethodGet, "/admin/stats", nil, nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.EqualValues(t, 1, resp.body["total_orders"])
		assert.EqualValues(t, 900, resp.body["total_revenue"])
		assert.EqualValues(t, 100, resp.body["total_discount"])
		codes := resp.body["discount_codes"].([]interface{})
		require.Len(t, codes, 1)
		assert.Equal(t, false, codes[0].(map[string]interface{})["is_valid"])
	})
}

func TestCheckoutMintsEveryNthOrder(t *testing.T) {
	a := setupApp(t, map[string]interface{}{"DISCOUNT_EVERY_N_ORDERS": 2})
	addItem(t, a, "pen", "Pen", 3)

	var minted interface{}
	for i := 1; i <= 2; i++ {
		user := fmt.Sprintf("user-%d", i)
		addToCart(t, a, user, "pen", 1)
		resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": user}, nil)
		require.Equal(t, http.StatusOK, resp.status)
		minted = resp.body["new_discount_code"]
		if i == 1 {
			assert.Nil(t, minted)
		}
	}
	require.NotNil(t, minted)

	addToCart(t, a, "user-3", "pen", 1)
	resp := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{
		"user_id": "user-3", "discount_code": minted,
	}, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.raw))
	assert.EqualValues(t, 0.3, resp.body["discount_amount"])
	assert.EqualValues(t, 2.7, resp.body["final_amount"])
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	a := setupApp(t, nil)
	addItem(t, a, "laptop", "Laptop", 1000)
	addToCart(t, a, "alice", "laptop", 1)

	headers := map[string]string{"Idempotency-Key": "order-attempt-1"}
	first := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "alice"}, headers)
	require.Equal(t, http.StatusOK, first.status)

	second := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "alice"}, headers)
	assert.Equal(t, http.StatusOK, second.status)
	assert.Equal(t, "true", second.header.Get("Idempotent-Replayed"))
	assert.Equal(t, first.body["order_id"], second.body["order_id"])

	// Without the key the retry reaches checkout and finds nothing to buy.
	third := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, third.status)

	stats := doJSON(t, a, http.MethodGet, "/admin/stats", nil, nil)
	assert.EqualValues(t, 1, stats.body["total_orders"])
}

func TestCheckoutIdempotencyKeyBoundToRequest(t *testing.T) {
	a := setupApp(t, nil)
	addItem(t, a, "laptop", "Laptop", 1000)
	addToCart(t, a, "alice", "laptop", 1)
	addToCart(t, a, "bob", "laptop", 1)

	headers := map[string]string{"Idempotency-Key": "k1"}
	alice := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "alice"}, headers)
	require.Equal(t, http.StatusOK, alice.status)

	bob := doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "bob"}, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, bob.status)
	assert.Empty(t, bob.header.Get("Idempotent-Replayed"))
	assert.NotContains(t, bob.body, "order_id")

	// Bob's cart is untouched and still checks out under his own key.
	cart := doJSON(t, a, http.MethodGet, "/cart/bob", nil, nil)
	assert.EqualValues(t, 1000, cart.body["total_amount"])

	bob = doJSON(t, a, http.MethodPost, "/cart/checkout", map[string]interface{}{"user_id": "bob"},
		map[string]string{"Idempotency-Key": "k2"})
	require.Equal(t, http.StatusOK, bob.status)
	assert.NotEqual(t, alice.body["order_id"], bob.body["order_id"])
}

func TestAdminDiscountEndpoints(t *testing.T) {
	a := setupApp(t, nil)

	for _, payload := range []map[string]interface{}{
		{"discount_percentage": 150},
		{"discount_percentage": -1},
		{},
	} {
		resp := doJSON(t, a, http.MethodPost, "/admin/discount", payload, nil)
		assert.Equal(t, http.StatusBadRequest, resp.status, "%v", payload)
	}

	code := generateCode(t, a, 0, nil)
	assert.Len(t, code, 8)

	resp := doJSON(t, a, http.MethodPost, "/admin/discount/"+code+"/invalidate", nil, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	resp = doJSON(t, a, http.MethodPost, "/admin/discount/"+code+"/invalidate", nil, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/admin/discount/NOSUCHCD/invalidate", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestAdminAuth(t *testing.T) {
	a := setupApp(t, map[string]interface{}{"ADMIN_AUTH_ENABLED": true})

	resp := doJSON(t, a, http.MethodGet, "/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/items", map[string]interface{}{
		"item_id": "laptop", "name": "Laptop", "price": 1,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = doJSON(t, a, http.MethodGet, "/admin/stats", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	// Catalog reads stay public.
	resp = doJSON(t, a, http.MethodGet, "/items", nil, nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/auth/register", map[string]interface{}{
		"username": "admin", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.status, string(resp.raw))
	operator := resp.body["operator"].(map[string]interface{})
	assert.NotContains(t, operator, "password")

	resp = doJSON(t, a, http.MethodPost, "/auth/register", map[string]interface{}{
		"username": "admin", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "admin", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = doJSON(t, a, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": "admin", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)
	token := resp.body["token"].(string)
	auth := map[string]string{"Authorization": "Bearer " + token}

	resp = doJSON(t, a, http.MethodGet, "/admin/stats", nil, auth)
	assert.Equal(t, http.StatusOK, resp.status)

	code := generateCode(t, a, 25, auth)
	assert.NotEmpty(t, code)
}
