package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_ConcatenatesWithoutDedup(t *testing.T) {
	var cafe Place
	cafe.Type = "cafe"
	cafe.DisplayName.Text = "Corner Cafe"
	cafe.Location.Latitude = -37.80
	cafe.Location.Longitude = 144.97

	// The same venue found by two overlapping category queries stays twice:
	// merge is concatenation, not de-duplication by place identity.
	dup := cafe
	dup.Type = "restaurant"

	a := Result{Places: []Place{cafe}}
	b := Result{Places: []Place{dup, cafe}}

	merged := Merge(a, b)
	assert.Len(t, merged.Places, 3)
	assert.Equal(t, "cafe", merged.Places[0].Type)
	assert.Equal(t, "restaurant", merged.Places[1].Type)
}

func TestMerge_EmptyInputsStayValid(t *testing.T) {
	merged := Merge(Stub(), Stub())
	assert.NotNil(t, merged.Places)
	assert.Empty(t, merged.Places)
}

func TestMapOverpassElements_CapsAndNames(t *testing.T) {
	els := make([]overpassElement, 0, 7)
	for i := 0; i < 7; i++ {
		e := overpassElement{Lat: -37.8, Lon: 144.9, Tags: map[string]string{"name": "Park"}}
		els = append(els, e)
	}
	els[1].Tags = nil // unnamed features fall back to the category label

	out := mapOverpassElements(els, "park")
	assert.Len(t, out, maxPerCategory)
	assert.Equal(t, "Park", out[0].DisplayName.Text)
	assert.Equal(t, "park", out[1].DisplayName.Text)
	for _, p := range out {
		assert.Equal(t, "park", p.Type)
	}
}
