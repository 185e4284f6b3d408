package geo

import (
	"math"
	"testing"
)

func TestDistanceM_Identity(t *testing.T) {
	p := Point{Lat: -37.8183, Lng: 144.9671}
	if d := DistanceM(p, p); d != 0 {
		t.Errorf("expected zero distance to self, got %f", d)
	}
}

func TestDistanceM_Symmetry(t *testing.T) {
	a := Point{Lat: -37.8183, Lng: 144.9671}
	b := Point{Lat: -37.8000, Lng: 145.0000}
	if DistanceM(a, b) != DistanceM(b, a) {
		t.Error("distance is not symmetric")
	}
}

func TestDistanceM_EquatorFixture(t *testing.T) {
	// 0.01 degrees of latitude is ~1,113 m on a 6,371 km sphere.
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0.01, Lng: 0}
	got := DistanceM(a, b)
	want := 1111.95
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("expected ~%0.2fm (±1%%), got %0.2fm", want, got)
	}
}

func TestDistanceM_NaNPropagates(t *testing.T) {
	a := Point{Lat: math.NaN(), Lng: 0}
	b := Point{Lat: 0, Lng: 0}
	if !math.IsNaN(DistanceM(a, b)) {
		t.Error("expected NaN input to propagate")
	}
}
