package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalErrorsDoNotLeak(t *testing.T) {
	a := newTestApp(t, &memStore{})
	require.NoError(t, a.deps.DB.Close())

	var status int
	var msg any
	entries := captureLogs(t, func() {
		resp, body := a.do(t, call{method: "GET", path: "/api/categories"})
		status, msg = resp.StatusCode, body["error"]
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "something went wrong, please retry", msg)

	e, ok := findAction(entries, "categories.list.fail")
	require.True(t, ok)
	assert.Equal(t, "error", e.Level)
	assert.True(t, strings.Contains(e.Err, "closed"), e.Err)

	resp, _ := a.do(t, call{method: "GET", path: "/healthz"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMalformedBodyAndUnknownRoute(t *testing.T) {
	a := newTestApp(t, &memStore{})
	tok := a.login(t, "owner@marketplace.test")

	req := call{method: "POST", path: "/api/shops/update", token: tok, body: "not an object"}
	resp, body := a.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "malformed request body", body["error"])

	resp, body = a.do(t, call{method: "GET", path: "/api/nothing-here"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])

	resp, body = a.do(t, call{method: "GET", path: "/healthz"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	a := newTestApp(t, &memStore{})
	resp, _ := a.do(t, call{method: "GET", path: "/api/categories"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
