package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardedHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	ja := NewJWTAuth("segredo-de-teste")
	h := LoginRequired(ja)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = userID(r)
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestLoginRequired_NoToken(t *testing.T) {
	h, _ := guardedHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/companies/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusUnauthorized, rr.Body.String())
	}
	assert.JSONEq(t, `{"error":"Login necessário"}`, rr.Body.String())
}

func TestLoginRequired_ValidToken(t *testing.T) {
	h, seen := guardedHandler(t)
	token, err := IssueToken(NewJWTAuth("segredo-de-teste"), "42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	assert.Equal(t, "42", *seen)
}

func TestLoginRequired_TokenFromCookie(t *testing.T) {
	h, _ := guardedHandler(t)
	token, err := IssueToken(NewJWTAuth("segredo-de-teste"), "7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLoginRequired_WrongSecret(t *testing.T) {
	h, _ := guardedHandler(t)
	token, err := IssueToken(NewJWTAuth("outro-segredo"), "42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRequired_ExpiredToken(t *testing.T) {
	h, _ := guardedHandler(t)
	token, err := IssueToken(NewJWTAuth("segredo-de-teste"), "42", -time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRequired_TokenWithoutUserID(t *testing.T) {
	h, _ := guardedHandler(t)
	_, token, err := NewJWTAuth("segredo-de-teste").Encode(map[string]interface{}{"type": "access"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRequired_PreflightPassesThrough(t *testing.T) {
	h, _ := guardedHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/companies/", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIssueToken_RequiresUser(t *testing.T) {
	_, err := IssueToken(NewJWTAuth("x"), "", time.Hour)
	assert.Error(t, err)
}

func TestLoginRequired_NonStringUserID(t *testing.T) {
	h, _ := guardedHandler(t)
	_, token, err := NewJWTAuth("segredo-de-teste").Encode(map[string]interface{}{"user_id": 42})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
