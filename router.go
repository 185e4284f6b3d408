package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/listings-api/http"
)

type RouterDeps struct {
	Providers httpapi.ProvidersDeps
	Listings  httpapi.ListingsDeps
	Leads     httpapi.LeadsDeps
	Assets    httpapi.AssetsDeps
}

func BuildRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(100, 1*time.Minute)) // protect upstream quota
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })

	httpapi.RegisterProviders(r, deps.Providers)
	httpapi.RegisterListings(r, deps.Listings)
	httpapi.RegisterLeads(r, deps.Leads)
	httpapi.RegisterAssets(r, deps.Assets)

	return r
}
