package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/listings-api/internal/store"
	"github.com/yourorg/listings-api/providers/geocode"
	"github.com/yourorg/listings-api/providers/heritage"
	"github.com/yourorg/listings-api/providers/medians"
	"github.com/yourorg/listings-api/providers/places"
	"github.com/yourorg/listings-api/providers/planning"
	"github.com/yourorg/listings-api/providers/schools"
	"github.com/yourorg/listings-api/providers/transit"
)

type fakeStore struct {
	listing   store.Listing
	getErr    error
	coordsSet bool
	lat, lng  float64
	upserts   []store.Enrichment
	upsertErr error
}

func (f *fakeStore) GetListing(ctx context.Context, id string) (store.Listing, error) {
	if f.getErr != nil {
		return store.Listing{}, f.getErr
	}
	return f.listing, nil
}

func (f *fakeStore) SetListingCoords(ctx context.Context, id string, lat, lng float64) error {
	f.coordsSet = true
	f.lat, f.lng = lat, lng
	return nil
}

func (f *fakeStore) UpsertEnrichment(ctx context.Context, e store.Enrichment) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	// full replace: the latest record is the only record
	f.upserts = append(f.upserts, e)
	return nil
}

func (f *fakeStore) last() store.Enrichment { return f.upserts[len(f.upserts)-1] }

type fakeGeocoder struct {
	called  bool
	address string
	res     geocode.Result
	err     error
}

func (f *fakeGeocoder) Lookup(ctx context.Context, address string) (geocode.Result, error) {
	f.called = true
	f.address = address
	return f.res, f.err
}

type fakeSchools struct {
	called bool
	err    error
}

func (f *fakeSchools) Nearby(ctx context.Context, lat, lng float64, address string) (schools.Result, error) {
	f.called = true
	if f.err != nil {
		return schools.Result{}, f.err
	}
	return schools.Result{Top3: []schools.RankedSchool{{Name: "Fitzroy Primary", DistanceM: 320}}}, nil
}

type fakeTransit struct {
	called bool
	err    error
}

func (f *fakeTransit) Nearest(ctx context.Context, lat, lng float64) (transit.Result, error) {
	f.called = true
	if f.err != nil {
		return transit.Result{}, f.err
	}
	return transit.Result{Nearest: []transit.Stop{{StopID: 1071, StopName: "Flinders Street", DistanceM: 210, Departures: []transit.Departure{}}}}, nil
}

type fakePlaces struct {
	called int
	err    error
}

func (f *fakePlaces) Nearby(ctx context.Context, lat, lng float64, types []string, radiusM int) (places.Result, error) {
	f.called++
	if f.err != nil {
		return places.Result{}, f.err
	}
	var p places.Place
	p.Type = types[0]
	p.DisplayName.Text = "Somewhere"
	return places.Result{Places: []places.Place{p, p}}, nil
}

type fakeHeritage struct{ called bool }

func (f *fakeHeritage) Lookup(ctx context.Context, lat, lng float64) (heritage.Result, error) {
	f.called = true
	return heritage.Stub(), nil
}

type fakePlanning struct{ called bool }

func (f *fakePlanning) Overlays(ctx context.Context, lat, lng float64) (planning.Result, error) {
	f.called = true
	return planning.Result{Zone: "GRZ1", Overlays: []string{"HO123"}}, nil
}

type fakeMedians struct{ called bool }

func (f *fakeMedians) Fetch(ctx context.Context, suburb string) (medians.Result, error) {
	f.called = true
	return medians.Stub(suburb), nil
}

func listingWithCoords() store.Listing {
	return store.Listing{
		ID:          "11111111-1111-1111-1111-111111111111",
		AddressLine: "12 Example St",
		Suburb:      "Fitzroy",
		State:       "VIC",
		Postcode:    "3065",
		Lat:         sql.NullFloat64{Float64: -37.8000, Valid: true},
		Lng:         sql.NullFloat64{Float64: 144.9780, Valid: true},
	}
}

func newOrchestrator(st *fakeStore, gc *fakeGeocoder) (*Orchestrator, *fakeTransit, *fakePlaces) {
	tr := &fakeTransit{}
	pl := &fakePlaces{}
	return &Orchestrator{
		Store:    st,
		Geocoder: gc,
		Schools:  &fakeSchools{},
		Transit:  tr,
		Places:   pl,
		Heritage: &fakeHeritage{},
		Planning: &fakePlanning{},
		Medians:  &fakeMedians{},
	}, tr, pl
}

func TestRun_SkipsGeocodeWhenCoordsPresent(t *testing.T) {
	st := &fakeStore{listing: listingWithCoords()}
	gc := &fakeGeocoder{}
	o, _, pl := newOrchestrator(st, gc)

	out, err := o.Run(context.Background(), st.listing.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePersisted, out.State)
	assert.False(t, gc.called, "geocoder must not run when coords exist")
	assert.False(t, st.coordsSet)
	assert.Equal(t, 2, pl.called, "two POI passes: near and wide")
	require.Len(t, st.upserts, 1)

	var d map[string]string
	require.NoError(t, json.Unmarshal(st.last().DisclaimersJSON, &d))
	assert.Equal(t, transit.Disclaimer, d["ptv"])
	assert.Equal(t, schools.Disclaimer, d["schools"])
}

func TestRun_GeocodesAndPersistsCoords(t *testing.T) {
	l := listingWithCoords()
	l.Lat, l.Lng = sql.NullFloat64{}, sql.NullFloat64{}
	st := &fakeStore{listing: l}
	gc := &fakeGeocoder{res: geocode.Result{Lat: -37.8, Lng: 144.97, Source: "nominatim"}}
	o, _, _ := newOrchestrator(st, gc)

	out, err := o.Run(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePersisted, out.State)
	assert.True(t, gc.called)
	assert.Equal(t, "12 Example St, Fitzroy VIC 3065", gc.address)
	assert.True(t, st.coordsSet)
	assert.InDelta(t, -37.8, st.lat, 1e-9)
}

func TestRun_GeocodeFailureIsFatal(t *testing.T) {
	l := listingWithCoords()
	l.Lat, l.Lng = sql.NullFloat64{}, sql.NullFloat64{}
	st := &fakeStore{listing: l}
	gc := &fakeGeocoder{err: geocode.ErrNoMatch}
	o, tr, pl := newOrchestrator(st, gc)

	out, err := o.Run(context.Background(), l.ID)
	require.Error(t, err)
	assert.Equal(t, StateFailed, out.State)
	assert.False(t, tr.called, "no provider runs without coordinates")
	assert.Zero(t, pl.called)
	assert.Empty(t, st.upserts, "nothing is persisted on a fatal geocode")
}

func TestRun_ProviderFailureDegradesToStub(t *testing.T) {
	st := &fakeStore{listing: listingWithCoords()}
	o, tr, _ := newOrchestrator(st, &fakeGeocoder{})
	tr.err = errors.New("ptv down")

	out, err := o.Run(context.Background(), st.listing.ID)
	require.NoError(t, err, "one provider failing never fails the run")
	assert.Equal(t, StatePersisted, out.State)

	var ptv transit.Result
	require.NoError(t, json.Unmarshal(st.last().PTVJSON, &ptv))
	assert.NotNil(t, ptv.Nearest)
	assert.Empty(t, ptv.Nearest)
	assert.Equal(t, transit.Stub().VerifyLink, ptv.VerifyLink)
}

func TestRun_RerunReplacesInsteadOfAccumulating(t *testing.T) {
	st := &fakeStore{listing: listingWithCoords()}
	o, _, _ := newOrchestrator(st, &fakeGeocoder{})

	_, err := o.Run(context.Background(), st.listing.ID)
	require.NoError(t, err)
	_, err = o.Run(context.Background(), st.listing.ID)
	require.NoError(t, err)

	var first, second places.Result
	require.NoError(t, json.Unmarshal(st.upserts[0].POIsJSON, &first))
	require.NoError(t, json.Unmarshal(st.last().POIsJSON, &second))
	assert.Equal(t, len(first.Places), len(second.Places), "re-enrichment replaces, POIs do not double")
}

func TestRun_PersistFailure(t *testing.T) {
	st := &fakeStore{listing: listingWithCoords(), upsertErr: errors.New("pg down")}
	o, _, _ := newOrchestrator(st, &fakeGeocoder{})

	out, err := o.Run(context.Background(), st.listing.ID)
	require.Error(t, err)
	assert.Equal(t, StateFailed, out.State)
}
