package schools

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/listings-api/internal/store"
)

type fakeSource struct {
	schools []store.School
	err     error
}

func (f *fakeSource) ListSchools(_ context.Context) ([]store.School, error) {
	return f.schools, f.err
}

// Carlton Gardens as the query point; schools at increasing latitude offsets.
const qLat, qLng = -37.8055, 144.9715

func refSchools(n int) []store.School {
	names := []string{"Alpha Primary", "Beta Primary", "Gamma Secondary", "Delta College", "Epsilon Primary"}
	out := make([]store.School, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, store.School{
			Name: names[i],
			Lat:  qLat + float64(i+1)*0.01,
			Lng:  qLng,
		})
	}
	return out
}

func TestNearby_TopThreeAscending(t *testing.T) {
	f := NewFinder(&fakeSource{schools: refSchools(5)}, nil)
	res, err := f.Nearby(context.Background(), qLat, qLng, "12 Example St, Carlton VIC 3053")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Top3) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res.Top3))
	}
	for i := 1; i < len(res.Top3); i++ {
		if res.Top3[i-1].DistanceM >= res.Top3[i].DistanceM {
			t.Errorf("results not strictly ascending: %d then %d",
				res.Top3[i-1].DistanceM, res.Top3[i].DistanceM)
		}
	}
	if res.Top3[0].Name != "Alpha Primary" {
		t.Errorf("expected nearest first, got %s", res.Top3[0].Name)
	}
	if res.FindMySchoolURL == "" {
		t.Error("expected find_my_school_url when address given")
	}
}

func TestNearby_FewerThanThree(t *testing.T) {
	f := NewFinder(&fakeSource{schools: refSchools(2)}, nil)
	res, err := f.Nearby(context.Background(), qLat, qLng, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Top3) != 2 {
		t.Errorf("expected min(3,N)=2 results, got %d", len(res.Top3))
	}
	if res.FindMySchoolURL != "" {
		t.Error("expected no deep link without an address")
	}
}

func TestNearby_DatasetFailureDegradesToStub(t *testing.T) {
	f := NewFinder(&fakeSource{err: errors.New("db down")}, nil)
	res, err := f.Nearby(context.Background(), qLat, qLng, "addr")
	if err != nil {
		t.Fatalf("soft failure must not surface as error, got %v", err)
	}
	if res.Top3 == nil || len(res.Top3) != 0 {
		t.Errorf("expected empty-but-valid top3, got %v", res.Top3)
	}
}
