package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpapi "github.com/yourorg/listings-api/http"
	"github.com/yourorg/listings-api/internal/assets"
	"github.com/yourorg/listings-api/internal/enrich"
	"github.com/yourorg/listings-api/internal/env"
	"github.com/yourorg/listings-api/internal/fetchcache"
	"github.com/yourorg/listings-api/internal/logger"
	"github.com/yourorg/listings-api/internal/redisx"
	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/providers/geocode"
	"github.com/yourorg/listings-api/providers/heritage"
	"github.com/yourorg/listings-api/providers/medians"
	"github.com/yourorg/listings-api/providers/places"
	"github.com/yourorg/listings-api/providers/planning"
	"github.com/yourorg/listings-api/providers/schools"
	"github.com/yourorg/listings-api/providers/transit"
)

func main() {
	env.Load()
	log := logger.New(logger.ParseLevel(env.Get("LOG_LEVEL", "info")), env.Get("LOG_FORMAT", "") == "json")

	port := env.GetInt("PORT", 4002)
	dsn := env.Must("DATABASE_URL")

	st, err := store.Open(dsn)
	if err != nil {
		log.Error("opening postgres", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		log.Error("postgres unreachable", "error", err)
		return
	}
	if err := st.Migrate(ctx); err != nil {
		log.Error("migrating schema", "error", err)
		return
	}

	// Redis backs the provider fetch cache; the service runs fine without it.
	var cache *fetchcache.Cache
	if addr := env.Get("REDIS_ADDR", ""); addr != "" {
		rdb := redisx.New(addr, env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unreachable, fetch cache disabled", "error", err)
		} else {
			cache = fetchcache.New(rdb, time.Duration(env.GetInt("FETCH_CACHE_TTL_MIN", 360))*time.Minute)
		}
	}

	geocoder := geocode.NewClient(env.Get("GOOGLE_MAPS_API_KEY", ""), cache, log)
	schoolFinder := schools.NewFinder(st, log)
	ptv := transit.NewClient(env.Get("PTV_DEV_ID", ""), env.Get("PTV_API_KEY", ""), log)
	poi := places.NewClient(env.Get("PLACES_PROVIDER", ""), env.Get("GOOGLE_PLACES_API_KEY", ""),
		env.Get("OVERPASS_URL", ""), cache, log)
	her := heritage.NewClient(env.Get("HERITAGE_API_URL", ""), cache, log)
	plan := planning.NewClient(env.Get("VICPLAN_WFS_URL", ""), cache, log)
	med := medians.NewLookup(st, log)

	orch := &enrich.Orchestrator{
		Store:    st,
		Geocoder: geocoder,
		Schools:  schoolFinder,
		Transit:  ptv,
		Places:   poi,
		Heritage: her,
		Planning: plan,
		Medians:  med,
		Log:      log,
	}

	gateway := assets.NewGateway(env.Get("IMAGE_GATEWAY_URL", ""), env.Get("IMAGE_GATEWAY_API_KEY", ""),
		env.Get("IMAGE_GATEWAY_MODEL", ""), log)
	pdf := assets.NewPDFRenderer(env.Get("PDF_API_URL", ""), log)

	router := BuildRouter(RouterDeps{
		Providers: httpapi.ProvidersDeps{
			Geocoder: geocoder,
			Schools:  schoolFinder,
			Transit:  ptv,
			Places:   poi,
			Heritage: her,
			Planning: plan,
			Medians:  med,
		},
		Listings: httpapi.ListingsDeps{Store: st, Orchestrator: orch},
		Leads:    httpapi.LeadsDeps{Store: st},
		Assets:   httpapi.AssetsDeps{Store: st, Gateway: gateway, PDF: pdf},
	})

	log.Info("listings-api listening", "port", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), logger.Middleware(log)(router)); err != nil {
		log.Error("server exited", "error", err)
	}
}
