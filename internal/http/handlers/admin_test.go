package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, a *testApp) string {
	t.Helper()
	resp, body := a.do(t, call{method: "POST", path: "/api/checkout", body: map[string]any{
		"lines":   []map[string]any{{"productId": "p-attieke-01", "quantity": 2}},
		"contact": map[string]any{"name": "Awa", "phone": "0700000000", "neighborhood": "x", "commune": "y", "city": "z"},
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["id"].(string)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newTestApp(t, &memStore{})
	owner := a.login(t, "owner@marketplace.test")

	resp, _ := a.do(t, call{method: "GET", path: "/api/admin/orders"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(t, call{method: "GET", path: "/api/admin/orders", token: owner})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminOrderStatus(t *testing.T) {
	a := newTestApp(t, &memStore{})
	admin := a.login(t, "admin@marketplace.test")
	id := placeOrder(t, a)

	resp, body := a.do(t, call{method: "GET", path: "/api/admin/orders", token: admin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["orders"], 1)

	resp, body = a.do(t, call{method: "GET", path: "/api/admin/orders/" + id, token: admin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 1)
	assert.EqualValues(t, 3000, body["total"])

	resp, body = a.do(t, call{method: "POST", path: "/api/admin/orders/" + id + "/status", token: admin,
		body: map[string]any{"status": "delivered"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "transition requires confirmation")

	entries := captureLogs(t, func() {
		resp, body = a.do(t, call{method: "POST", path: "/api/admin/orders/" + id + "/status", token: admin,
			body: map[string]any{"status": "delivered", "confirm": true}})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	})
	assert.Equal(t, true, body["override"])
	e, ok := findAction(entries, "admin.orders.update")
	require.True(t, ok)
	assert.Equal(t, true, e.Fields["override"])
	assert.Equal(t, true, e.Fields["audit"])
	assert.Equal(t, "u-admin", e.UserID)

	resp, _ = a.do(t, call{method: "POST", path: "/api/admin/orders/" + id + "/status", token: admin,
		body: map[string]any{"status": "teleported"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, call{method: "GET", path: "/api/admin/orders/nope", token: admin})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminShipments(t *testing.T) {
	a := newTestApp(t, &memStore{})
	admin := a.login(t, "admin@marketplace.test")

	draft := map[string]any{"route": "city_to_interior", "tier": "express", "size": "L", "weightKg": 3, "declaredValue": 2000000}
	resp, body := a.do(t, call{method: "POST", path: "/api/admin/shipments/estimate", token: admin, body: draft})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 3500+1500+3*650+10000, body["total"])

	draft["recipient"] = map[string]any{"name": "Koffi", "phone": "0700000000", "neighborhood": "Centre", "commune": "Bouaké", "city": "Bouaké"}
	resp, body = a.do(t, call{method: "POST", path: "/api/admin/shipments", token: admin, body: draft})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := body["id"].(string)

	resp, body = a.do(t, call{method: "GET", path: "/api/admin/shipments", token: admin})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["shipments"], 1)

	resp, body = a.do(t, call{method: "POST", path: "/api/admin/shipments/" + id + "/status", token: admin,
		body: map[string]any{"status": "confirmed"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, false, body["override"])

	resp, _ = a.do(t, call{method: "POST", path: "/api/admin/shipments/estimate", token: admin,
		body: map[string]any{"route": "nowhere", "tier": "standard", "size": "S", "weightKg": 1}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
