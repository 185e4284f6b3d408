package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/providers/geocode"
	"github.com/yourorg/listings-api/providers/heritage"
	"github.com/yourorg/listings-api/providers/medians"
	"github.com/yourorg/listings-api/providers/places"
	"github.com/yourorg/listings-api/providers/planning"
	"github.com/yourorg/listings-api/providers/schools"
	"github.com/yourorg/listings-api/providers/transit"
)

// State tracks where an enrichment run is in its lifecycle. Failed is only
// reachable from geocoding and persistence; provider failures degrade to
// stubs and the run still completes.
type State string

const (
	StateNotStarted        State = "not_started"
	StateGeocoding         State = "geocoding"
	StateFetchingProviders State = "fetching_providers"
	StateMerging           State = "merging"
	StatePersisted         State = "persisted"
	StateFailed            State = "failed"
)

const providerTimeout = 10 * time.Second

// The two POI passes: everyday amenities close by, anchors a bit wider.
var (
	nearPOITypes = []string{"cafe", "restaurant"}
	widePOITypes = []string{"supermarket", "park", "beach"}
)

const (
	nearPOIRadiusM = 800
	widePOIRadiusM = 1500
)

type Geocoder interface {
	Lookup(ctx context.Context, address string) (geocode.Result, error)
}

type SchoolFinder interface {
	Nearby(ctx context.Context, lat, lng float64, address string) (schools.Result, error)
}

type TransitClient interface {
	Nearest(ctx context.Context, lat, lng float64) (transit.Result, error)
}

type PlacesClient interface {
	Nearby(ctx context.Context, lat, lng float64, types []string, radiusM int) (places.Result, error)
}

type HeritageClient interface {
	Lookup(ctx context.Context, lat, lng float64) (heritage.Result, error)
}

type PlanningClient interface {
	Overlays(ctx context.Context, lat, lng float64) (planning.Result, error)
}

type MediansLookup interface {
	Fetch(ctx context.Context, suburb string) (medians.Result, error)
}

// ListingStore is the persistence slice the orchestrator needs.
type ListingStore interface {
	GetListing(ctx context.Context, id string) (store.Listing, error)
	SetListingCoords(ctx context.Context, id string, lat, lng float64) error
	UpsertEnrichment(ctx context.Context, e store.Enrichment) error
}

// Orchestrator runs the full enrichment pipeline for one listing: geocode if
// needed, fan out to every provider concurrently, merge, persist.
type Orchestrator struct {
	Store    ListingStore
	Geocoder Geocoder
	Schools  SchoolFinder
	Transit  TransitClient
	Places   PlacesClient
	Heritage HeritageClient
	Planning PlanningClient
	Medians  MediansLookup
	Log      *slog.Logger
}

// Outcome reports the terminal state of a run plus what was persisted.
type Outcome struct {
	State      State            `json:"state"`
	Enrichment store.Enrichment `json:"enrichment"`
}

// Run enriches one listing end to end. Geocoding is the only provider step
// that can fail the run: without coordinates nothing downstream is
// meaningful. Every other provider degrades to its safe stub.
func (o *Orchestrator) Run(ctx context.Context, listingID string) (Outcome, error) {
	log := o.Log
	if log == nil {
		log = slog.Default()
	}
	out := Outcome{State: StateNotStarted}

	l, err := o.Store.GetListing(ctx, listingID)
	if err != nil {
		out.State = StateFailed
		return out, err
	}

	address := canon.FormattedAddress(l.AddressLine, l.Suburb, l.State, l.Postcode)

	lat, lng := l.Lat.Float64, l.Lng.Float64
	if !l.HasCoords() {
		out.State = StateGeocoding
		geo, err := o.Geocoder.Lookup(ctx, address)
		if err != nil {
			out.State = StateFailed
			return out, fmt.Errorf("geocode %q: %w", address, err)
		}
		lat, lng = geo.Lat, geo.Lng
		// coordinates are useful on their own, persist them even if a later
		// step fails
		if err := o.Store.SetListingCoords(ctx, listingID, lat, lng); err != nil {
			log.Warn("persisting coords failed", "listing_id", listingID, "error", err)
		}
	}

	out.State = StateFetchingProviders
	var (
		schoolsRes  schools.Result
		transitRes  transit.Result
		placesRes   places.Result
		heritageRes heritage.Result
		planningRes planning.Result
		mediansRes  medians.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		r, err := o.Schools.Nearby(cctx, lat, lng, address)
		if err != nil {
			log.Warn("schools provider failed", "listing_id", listingID, "error", err)
			r = schools.Stub(address)
		}
		schoolsRes = r
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		r, err := o.Transit.Nearest(cctx, lat, lng)
		if err != nil {
			log.Warn("transit provider failed", "listing_id", listingID, "error", err)
			r = transit.Stub()
		}
		transitRes = r
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		near, err := o.Places.Nearby(cctx, lat, lng, nearPOITypes, nearPOIRadiusM)
		if err != nil {
			log.Warn("places provider failed", "listing_id", listingID, "error", err)
			near = places.Stub()
		}
		wide, err := o.Places.Nearby(cctx, lat, lng, widePOITypes, widePOIRadiusM)
		if err != nil {
			log.Warn("places provider failed", "listing_id", listingID, "error", err)
			wide = places.Stub()
		}
		placesRes = places.Merge(near, wide)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		r, err := o.Heritage.Lookup(cctx, lat, lng)
		if err != nil {
			log.Warn("heritage provider failed", "listing_id", listingID, "error", err)
			r = heritage.Stub()
		}
		heritageRes = r
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		r, err := o.Planning.Overlays(cctx, lat, lng)
		if err != nil {
			log.Warn("planning provider failed", "listing_id", listingID, "error", err)
			r = planning.Stub()
		}
		planningRes = r
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, providerTimeout)
		defer cancel()
		r, err := o.Medians.Fetch(cctx, l.Suburb)
		if err != nil {
			log.Warn("medians provider failed", "listing_id", listingID, "error", err)
			r = medians.Stub(l.Suburb)
		}
		mediansRes = r
		return nil
	})
	if err := g.Wait(); err != nil {
		// workers never return errors, only context cancellation lands here
		out.State = StateFailed
		return out, err
	}

	out.State = StateMerging
	e := store.Enrichment{
		ListingID:   listingID,
		GeneratedAt: time.Now().UTC(),
	}
	e.SchoolsJSON = mustJSON(schoolsRes)
	e.PTVJSON = mustJSON(transitRes)
	e.POIsJSON = mustJSON(placesRes)
	e.HeritageJSON = mustJSON(heritageRes)
	e.PlanningJSON = mustJSON(planningRes)
	e.MediansJSON = mustJSON(mediansRes)
	e.DisclaimersJSON = mustJSON(Disclaimers())

	if err := o.Store.UpsertEnrichment(ctx, e); err != nil {
		out.State = StateFailed
		return out, fmt.Errorf("persist enrichment: %w", err)
	}
	out.State = StatePersisted
	out.Enrichment = e
	return out, nil
}

// Disclaimers is the fixed per-source disclaimer bundle persisted alongside
// every enrichment record.
func Disclaimers() map[string]string {
	return map[string]string{
		"schools":  schools.Disclaimer,
		"ptv":      transit.Disclaimer,
		"planning": planning.Disclaimer,
		"heritage": heritage.Disclaimer,
		"medians":  medians.Disclaimer,
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// all inputs are marshalable structs, this cannot trip at runtime
		panic(err)
	}
	return b
}

// IsNotFound reports whether an enrichment run failed because the listing
// does not exist.
func IsNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }
