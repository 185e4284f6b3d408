package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/listings-api/internal/assets"
	"github.com/yourorg/listings-api/internal/store"
)

type AssetsDeps struct {
	Store   *store.Store
	Gateway *assets.Gateway
	PDF     *assets.PDFRenderer
}

// assetPayload is what gets persisted in the asset row: the prompt that
// produced the image plus whatever the gateway returned.
type assetPayload struct {
	Prompt   string `json:"prompt"`
	Caption  string `json:"caption,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Message  string `json:"message,omitempty"`
}

func RegisterAssets(r chi.Router, d AssetsDeps) {
	r.Post("/v1/listings/{listingID}/assets", func(w http.ResponseWriter, req *http.Request) {
		listingID := chi.URLParam(req, "listingID")
		var body struct {
			Type    string `json:"type"`
			Caption string `json:"caption"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		if !assets.ValidType(body.Type) {
			respondErr(w, req, http.StatusBadRequest, "unknown asset type")
			return
		}
		l, err := d.Store.GetListing(req.Context(), listingID)
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusNotFound, "listing not found")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}

		payload := assetPayload{
			Prompt:  assets.BuildPrompt(body.Type, l),
			Caption: body.Caption,
		}
		if d.Gateway.Configured() {
			img, err := d.Gateway.GenerateImage(req.Context(), payload.Prompt)
			switch {
			case errors.Is(err, assets.ErrRateLimited):
				respondErr(w, req, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			case errors.Is(err, assets.ErrPaymentRequired):
				respondErr(w, req, http.StatusPaymentRequired, "Payment required. Please add credits to your workspace.")
				return
			case err != nil:
				respondErr(w, req, http.StatusInternalServerError, err.Error())
				return
			}
			payload.ImageURL = img.URL
			payload.Message = img.Message
		}

		raw, err := json.Marshal(payload)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		a, err := d.Store.CreateSocialAsset(req.Context(), listingID, body.Type, raw)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, a)
	})

	r.Post("/v1/assets/{assetID}/status", func(w http.ResponseWriter, req *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(req, "assetID"), 10, 64)
		if err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid asset id")
			return
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			respondErr(w, req, http.StatusBadRequest, "invalid_json")
			return
		}
		a, err := d.Store.SetSocialAssetStatus(req.Context(), id, body.Status)
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondErr(w, req, http.StatusNotFound, "asset not found")
			return
		case errors.Is(err, store.ErrBadTransition):
			respondErr(w, req, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(w, req, a)
	})

	r.Get("/v1/listings/{listingID}/assets", func(w http.ResponseWriter, req *http.Request) {
		list, err := d.Store.ListSocialAssets(req.Context(), chi.URLParam(req, "listingID"))
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []store.SocialAsset{}
		}
		respondOK(w, req, list)
	})

	r.Post("/v1/listings/{listingID}/cheatsheet", func(w http.ResponseWriter, req *http.Request) {
		listingID := chi.URLParam(req, "listingID")
		l, err := d.Store.GetListing(req.Context(), listingID)
		if errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusNotFound, "listing not found")
			return
		}
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		// the sheet renders with whatever enrichment exists, or none
		e, err := d.Store.GetEnrichment(req.Context(), listingID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		html, err := assets.BuildCheatSheetHTML(l, e)
		if err != nil {
			respondErr(w, req, http.StatusInternalServerError, err.Error())
			return
		}
		if d.PDF.Configured() {
			if url, err := d.PDF.Render(req.Context(), html); err == nil {
				respondOK(w, req, map[string]any{"pdfUrl": url})
				return
			}
			// fall through to raw HTML for browser printing
		}
		respondOK(w, req, map[string]any{"html": html})
	})
}
