package medians

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yourorg/listings-api/internal/store"
)

const Disclaimer = "Medians are indicative suburb statistics; not a valuation."

type Result struct {
	Suburb string              `json:"suburb"`
	House  []store.MedianPoint `json:"house"`
	Unit   []store.MedianPoint `json:"unit"`
}

func Stub(suburb string) Result {
	return Result{Suburb: suburb, House: []store.MedianPoint{}, Unit: []store.MedianPoint{}}
}

var ErrSuburbRequired = errors.New("suburb required")

type Source interface {
	ListMedians(ctx context.Context, suburb, propertyType string) ([]store.MedianPoint, error)
}

type Lookup struct {
	Source Source
	Log    *slog.Logger
}

func NewLookup(src Source, log *slog.Logger) *Lookup {
	if log == nil {
		log = slog.Default()
	}
	return &Lookup{Source: src, Log: log}
}

// Fetch returns the house and unit series for a suburb, each ordered by year
// ascending. An absent series is an empty list, not an error.
func (l *Lookup) Fetch(ctx context.Context, suburb string) (Result, error) {
	if suburb == "" {
		return Result{}, ErrSuburbRequired
	}
	house, err := l.Source.ListMedians(ctx, suburb, "house")
	if err != nil {
		l.Log.Warn("medians lookup unavailable", "suburb", suburb, "error", err)
		return Stub(suburb), nil
	}
	unit, err := l.Source.ListMedians(ctx, suburb, "unit")
	if err != nil {
		l.Log.Warn("medians lookup unavailable", "suburb", suburb, "error", err)
		return Stub(suburb), nil
	}
	return Result{Suburb: suburb, House: house, Unit: unit}, nil
}
