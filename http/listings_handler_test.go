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

func patchJSON(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func newListingsRouter() http.Handler {
	r := chi.NewRouter()
	RegisterListings(r, ListingsDeps{})
	return r
}

func TestPatchListing_RejectsUnknownStatus(t *testing.T) {
	h := newListingsRouter()
	for _, status := range []string{"banana", "published", "DRAFT", ""} {
		rec, env := patchJSON(t, h, "/v1/listings/11111111-1111-1111-1111-111111111111",
			`{"status":"`+status+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, status)
		assert.Equal(t, false, env["ok"], status)
		assert.Equal(t, "status must be draft, active or sold", env["error"], status)
	}
}

func TestCreateListing_RequiresAddressFields(t *testing.T) {
	rec, env := postJSON(t, newListingsRouter(), "/v1/listings", `{"suburb":"Fitzroy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "address_line, suburb and postcode required", env["error"])
}
