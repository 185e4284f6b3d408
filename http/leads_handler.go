package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/listings-api/internal/store"
)

type LeadsDeps struct {
	Store *store.Store
}

type leadView struct {
	ID        int64           `json:"id"`
	ListingID string          `json:"listing_id"`
	Name      *string         `json:"name,omitempty"`
	Email     *string         `json:"email,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	Source    *string         `json:"source,omitempty"`
	UTM       json.RawMessage `json:"utm,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toLeadView(l store.Lead) leadView {
	return leadView{
		ID:        l.ID,
		ListingID: l.ListingID,
		Name:      nullString(l.Name),
		Email:     nullString(l.Email),
		Phone:     nullString(l.Phone),
		Source:    nullString(l.Source),
		UTM:       l.UTMJSON,
		CreatedAt: l.CreatedAt,
	}
}

func RegisterLeads(r chi.Router, d LeadsDeps) {
	r.Post("/v1/listings/{listingID}/leads", func(w http.ResponseWriter, req *http.Request) {
		listingID := chi.URLParam(req, "listingID")
		var body struct {
			Name   string          `json:"name"`
			Email  string          `json:"email"`
			Phone  string          `json:"phone"`
			Source string          `json:"source"`
			UTM    json.RawMessage `json:"utm"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Name == "" && body.Email == "" && body.Phone == "" {
			respondErr(w, req, http.StatusBadRequest, "name, email or phone required")
			return
		}
		if _, err := d.Store.GetListing(req.Context(), listingID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondErr(w, req, http.StatusNotFound, "listing not found")
				return
			}
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		id, err := d.Store.CreateLead(req.Context(), store.CreateLeadInput{
			ListingID: listingID,
			Name:      body.Name,
			Email:     body.Email,
			Phone:     body.Phone,
			Source:    body.Source,
			UTMJSON:   body.UTM,
		})
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, map[string]any{"id": id})
	})

	r.Get("/v1/listings/{listingID}/leads", func(w http.ResponseWriter, req *http.Request) {
		leads, err := d.Store.ListLeads(req.Context(), chi.URLParam(req, "listingID"))
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		views := make([]leadView, 0, len(leads))
		for _, l := range leads {
			views = append(views, toLeadView(l))
		}
		respondOK(w, req, views)
	})
}
