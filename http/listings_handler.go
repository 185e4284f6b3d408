package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/listings-api/internal/enrich"
	"github.com/yourorg/listings-api/internal/store"
)

type ListingsDeps struct {
	Store        *store.Store
	Orchestrator *enrich.Orchestrator
}

var listingStatuses = map[string]bool{"draft": true, "active": true, "sold": true}

type listingView struct {
	ID           string    `json:"id"`
	AddressLine  string    `json:"address_line"`
	Suburb       string    `json:"suburb"`
	State        string    `json:"state"`
	Postcode     string    `json:"postcode"`
	Beds         *int64    `json:"beds,omitempty"`
	Baths        *int64    `json:"baths,omitempty"`
	Cars         *int64    `json:"cars,omitempty"`
	LandSizeSqm  *int64    `json:"land_size_sqm,omitempty"`
	PropertyType *string   `json:"property_type,omitempty"`
	PriceGuide   *string   `json:"price_guide_text,omitempty"`
	SoiURL       *string   `json:"soi_url,omitempty"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toListingView(l store.Listing) listingView {
	return listingView{
		ID:           l.ID,
		AddressLine:  l.AddressLine,
		Suburb:       l.Suburb,
		State:        l.State,
		Postcode:     l.Postcode,
		Beds:         nullInt(l.Beds),
		Baths:        nullInt(l.Baths),
		Cars:         nullInt(l.Cars),
		LandSizeSqm:  nullInt(l.LandSizeSqm),
		PropertyType: nullString(l.PropertyType),
		PriceGuide:   nullString(l.PriceGuide),
		SoiURL:       nullString(l.SoiURL),
		Lat:          nullFloat(l.Lat),
		Lng:          nullFloat(l.Lng),
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func optInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func optString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	r.Post("/v1/listings", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			AddressLine  string  `json:"address_line"`
			Suburb       string  `json:"suburb"`
			State        string  `json:"state"`
			Postcode     string  `json:"postcode"`
			Beds         *int64  `json:"beds"`
			Baths        *int64  `json:"baths"`
			Cars         *int64  `json:"cars"`
			LandSizeSqm  *int64  `json:"land_size_sqm"`
			PropertyType *string `json:"property_type"`
			PriceGuide   *string `json:"price_guide_text"`
			SoiURL       *string `json:"soi_url"`
			CreatedBy    *string `json:"created_by"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.AddressLine == "" || body.Suburb == "" || body.Postcode == "" {
			respondErr(w, req, http.StatusBadRequest, "address_line, suburb and postcode required")
			return
		}
		l, err := d.Store.CreateListing(req.Context(), store.CreateListingInput{
			AddressLine:  body.AddressLine,
			Suburb:       body.Suburb,
			State:        body.State,
			Postcode:     body.Postcode,
			Beds:         optInt(body.Beds),
			Baths:        optInt(body.Baths),
			Cars:         optInt(body.Cars),
			LandSizeSqm:  optInt(body.LandSizeSqm),
			PropertyType: optString(body.PropertyType),
			PriceGuide:   optString(body.PriceGuide),
			SoiURL:       optString(body.SoiURL),
			CreatedBy:    optString(body.CreatedBy),
		})
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, toListingView(l))
	})

	r.Get("/v1/listings", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		limit := 0
		if v := q.Get("limit"); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				limit = i
			}
		}
		list, err := d.Store.ListListings(req.Context(), q.Get("status"), limit)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]listingView, 0, len(list))
		for _, l := range list {
			views = append(views, toListingView(l))
		}
		respondOK(w, req, views)
	})

	r.Get("/v1/listings/{listingID}", func(w http.ResponseWriter, req *http.Request) {
		l, err := d.Store.GetListing(req.Context(), chi.URLParam(req, "listingID"))
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusNotFound, "listing not found")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, toListingView(l))
	})

	r.Patch("/v1/listings/{listingID}", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Beds         *int64  `json:"beds"`
			Baths        *int64  `json:"baths"`
			Cars         *int64  `json:"cars"`
			LandSizeSqm  *int64  `json:"land_size_sqm"`
			PropertyType *string `json:"property_type"`
			PriceGuide   *string `json:"price_guide_text"`
			SoiURL       *string `json:"soi_url"`
			Status       *string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Status != nil && !listingStatuses[*body.Status] {
			respondErr(w, req, http.StatusBadRequest, "status must be draft, active or sold")
			return
		}
		l, err := d.Store.UpdateListing(req.Context(), chi.URLParam(req, "listingID"), store.UpdateListingInput{
			Beds:         body.Beds,
			Baths:        body.Baths,
			Cars:         body.Cars,
			LandSizeSqm:  body.LandSizeSqm,
			PropertyType: body.PropertyType,
			PriceGuide:   body.PriceGuide,
			SoiURL:       body.SoiURL,
			Status:       body.Status,
		})
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusNotFound, "listing not found")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, toListingView(l))
	})

	r.Post("/v1/listings/{listingID}/enrich", func(w http.ResponseWriter, req *http.Request) {
		out, err := d.Orchestrator.Run(req.Context(), chi.URLParam(req, "listingID"))
		if enrich.IsNotFound(err) {
			respondErr(w, req, http.StatusNotFound, "listing not found")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, out)
	})

	r.Get("/v1/listings/{listingID}/enrichment", func(w http.ResponseWriter, req *http.Request) {
		e, err := d.Store.GetEnrichment(req.Context(), chi.URLParam(req, "listingID"))
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusNotFound, "listing not enriched")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, e)
	})
}
