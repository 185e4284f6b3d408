package schools

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/url"
	"sort"

	"github.com/yourorg/listings-api/internal/geo"
	"github.com/yourorg/listings-api/internal/store"
)

const Disclaimer = "School zones can change. Verify via the official 'Find My School' website before relying on zoning."

const findMySchoolBase = "https://www.findmyschool.vic.gov.au/"

type RankedSchool struct {
	Name      string `json:"name"`
	Sector    string `json:"sector,omitempty"`
	Level     string `json:"level,omitempty"`
	DistanceM int    `json:"distance_m"`
	Address   string `json:"address,omitempty"`
	Suburb    string `json:"suburb,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
}

type Result struct {
	Top3            []RankedSchool `json:"top3"`
	FindMySchoolURL string         `json:"find_my_school_url,omitempty"`
}

// Stub is the empty-but-valid result used when the reference dataset is
// unavailable. The verify link still gives the agent a manual path.
func Stub(address string) Result {
	return Result{Top3: []RankedSchool{}, FindMySchoolURL: findMySchoolLink(address)}
}

var ErrCoordsRequired = errors.New("lat/lng required")

// Source is the reference dataset reader; *store.Store satisfies it.
type Source interface {
	ListSchools(ctx context.Context) ([]store.School, error)
}

type Finder struct {
	Source Source
	Log    *slog.Logger
}

func NewFinder(src Source, log *slog.Logger) *Finder {
	if log == nil {
		log = slog.Default()
	}
	return &Finder{Source: src, Log: log}
}

// Nearby ranks the reference set by haversine distance and returns the
// closest three. A dataset failure degrades to the stub, never an error.
func (f *Finder) Nearby(ctx context.Context, lat, lng float64, address string) (Result, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return Result{}, ErrCoordsRequired
	}
	list, err := f.Source.ListSchools(ctx)
	if err != nil {
		f.Log.Warn("schools dataset unavailable", "error", err)
		return Stub(address), nil
	}

	here := geo.Point{Lat: lat, Lng: lng}
	ranked := make([]RankedSchool, 0, len(list))
	for _, s := range list {
		d := geo.DistanceM(here, geo.Point{Lat: s.Lat, Lng: s.Lng})
		ranked = append(ranked, RankedSchool{
			Name:      s.Name,
			Sector:    s.Sector,
			Level:     s.Level,
			DistanceM: int(math.Round(d)),
			Address:   s.Address,
			Suburb:    s.Suburb,
			Postcode:  s.Postcode,
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].DistanceM < ranked[j].DistanceM })
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	return Result{Top3: ranked, FindMySchoolURL: findMySchoolLink(address)}, nil
}

func findMySchoolLink(address string) string {
	if address == "" {
		return ""
	}
	return findMySchoolBase + "?Address=" + url.QueryEscape(address)
}
