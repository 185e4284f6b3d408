package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvidersRouter() http.Handler {
	r := chi.NewRouter()
	RegisterProviders(r, ProvidersDeps{})
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestClaimLint_FlagsRiskyCopy(t *testing.T) {
	rec, env := postJSON(t, newProvidersRouter(), "/claim_lint",
		`{"copy":"In catchment for top schools, just a 5 minute walk to the station"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env["ok"])
	data := env["data"].(map[string]any)
	assert.Equal(t, false, data["passed"])
	issues := data["issues"].([]any)
	require.Len(t, issues, 2)
}

func TestClaimLint_CleanCopyPasses(t *testing.T) {
	rec, env := postJSON(t, newProvidersRouter(), "/claim_lint",
		`{"copy":"Generous family home close to schools and transport."}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]any)
	assert.Equal(t, true, data["passed"])
}

func TestClaimLint_RequiresCopy(t *testing.T) {
	rec, env := postJSON(t, newProvidersRouter(), "/claim_lint", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, env["ok"])
	assert.Equal(t, "copy required", env["error"])
}

func TestProviderEndpoints_RejectMissingCoords(t *testing.T) {
	h := newProvidersRouter()
	for _, path := range []string{"/schools_nearby", "/ptv_nearest", "/places_nearby", "/heritage_lookup", "/vicplan_overlays"} {
		rec, env := postJSON(t, h, path, `{"lat":-37.8}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "lat/lng required", env["error"], path)
	}
}

func TestGeocode_RequiresAddress(t *testing.T) {
	rec, env := postJSON(t, newProvidersRouter(), "/geocode", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "address required", env["error"])
}
