package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/listings-api/internal/claimlint"
	"github.com/yourorg/listings-api/providers/geocode"
	"github.com/yourorg/listings-api/providers/heritage"
	"github.com/yourorg/listings-api/providers/medians"
	"github.com/yourorg/listings-api/providers/places"
	"github.com/yourorg/listings-api/providers/planning"
	"github.com/yourorg/listings-api/providers/schools"
	"github.com/yourorg/listings-api/providers/transit"
)

type ProvidersDeps struct {
	Geocoder *geocode.Client
	Schools  *schools.Finder
	Transit  *transit.Client
	Places   *places.Client
	Heritage *heritage.Client
	Planning *planning.Client
	Medians  *medians.Lookup
}

type latLngBody struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (b latLngBody) valid() bool { return b.Lat != nil && b.Lng != nil }

// RegisterProviders exposes each enrichment source as a standalone endpoint
// so the workspace UI can call them individually.
func RegisterProviders(r chi.Router, d ProvidersDeps) {
	r.Post("/geocode", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Address == "" {
			respondErr(w, req, http.StatusBadRequest, "address required")
			return
		}
		res, err := d.Geocoder.Lookup(req.Context(), body.Address)
		if errors.Is(err, geocode.ErrNoMatch) {
			respondErr(w, req, http.StatusNotFound, "no geocode result")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, res)
	})

	r.Post("/schools_nearby", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			latLngBody
			Address string `json:"address"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !body.valid() {
			respondErr(w, req, http.StatusBadRequest, "lat/lng required")
			return
		}
		res, err := d.Schools.Nearby(req.Context(), *body.Lat, *body.Lng, body.Address)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOKDisclaimer(w, req, res, schools.Disclaimer)
	})

	r.Post("/ptv_nearest", func(w http.ResponseWriter, req *http.Request) {
		var body latLngBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !body.valid() {
			respondErr(w, req, http.StatusBadRequest, "lat/lng required")
			return
		}
		res, err := d.Transit.Nearest(req.Context(), *body.Lat, *body.Lng)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOKDisclaimer(w, req, res, transit.Disclaimer)
	})

	r.Post("/places_nearby", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			latLngBody
			Types   []string `json:"types"`
			RadiusM int      `json:"radius_m"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !body.valid() {
			respondErr(w, req, http.StatusBadRequest, "lat/lng required")
			return
		}
		res, err := d.Places.Nearby(req.Context(), *body.Lat, *body.Lng, body.Types, body.RadiusM)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, res)
	})

	r.Post("/heritage_lookup", func(w http.ResponseWriter, req *http.Request) {
		var body latLngBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !body.valid() {
			respondErr(w, req, http.StatusBadRequest, "lat/lng required")
			return
		}
		res, err := d.Heritage.Lookup(req.Context(), *body.Lat, *body.Lng)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOKDisclaimer(w, req, res, heritage.Disclaimer)
	})

	r.Post("/vicplan_overlays", func(w http.ResponseWriter, req *http.Request) {
		var body latLngBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !body.valid() {
			respondErr(w, req, http.StatusBadRequest, "lat/lng required")
			return
		}
		res, err := d.Planning.Overlays(req.Context(), *body.Lat, *body.Lng)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOKDisclaimer(w, req, res, planning.Disclaimer)
	})

	r.Post("/vgv_medians", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Suburb string `json:"suburb"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Suburb == "" {
			respondErr(w, req, http.StatusBadRequest, "suburb required")
			return
		}
		res, err := d.Medians.Fetch(req.Context(), body.Suburb)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOKDisclaimer(w, req, res, medians.Disclaimer)
	})

	r.Post("/claim_lint", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Copy string `json:"copy"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Copy == "" {
			respondErr(w, req, http.StatusBadRequest, "copy required")
			return
		}
		respondOK(w, req, claimlint.Lint(body.Copy))
	})
}
