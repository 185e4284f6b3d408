package assets

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/listings-api/internal/store"
)

func sampleListing() store.Listing {
	return store.Listing{
		ID:           "22222222-2222-2222-2222-222222222222",
		AddressLine:  "12 Example St",
		Suburb:       "Fitzroy",
		State:        "VIC",
		Postcode:     "3065",
		Beds:         sql.NullInt64{Int64: 4, Valid: true},
		Baths:        sql.NullInt64{Int64: 2, Valid: true},
		LandSizeSqm:  sql.NullInt64{Int64: 650, Valid: true},
		PropertyType: sql.NullString{String: "house", Valid: true},
		PriceGuide:   sql.NullString{String: "1250000", Valid: true},
	}
}

func TestBuildCheatSheetHTML_EmptyEnrichment(t *testing.T) {
	html, err := BuildCheatSheetHTML(sampleListing(), store.Enrichment{})
	require.NoError(t, err)

	assert.Contains(t, html, "12 Example St, Fitzroy VIC 3065")
	assert.Contains(t, html, "Property Highlights")
	assert.Contains(t, html, "Key Selling Points")
	// sections backed by absent sub-documents are dropped entirely
	assert.NotContains(t, html, "Nearby Schools")
	assert.NotContains(t, html, "Public Transport")
	assert.NotContains(t, html, "Market Insights")
}

func TestBuildCheatSheetHTML_MalformedSubDocIsDropped(t *testing.T) {
	e := store.Enrichment{SchoolsJSON: json.RawMessage(`{"top3": "not-a-list"`)}
	html, err := BuildCheatSheetHTML(sampleListing(), e)
	require.NoError(t, err)
	assert.NotContains(t, html, "Nearby Schools")
}

func TestBuildCheatSheetHTML_PopulatedSections(t *testing.T) {
	e := store.Enrichment{
		SchoolsJSON: json.RawMessage(`{"top3":[{"name":"Fitzroy Primary","sector":"Government","level":"Primary","distance_m":320}]}`),
		PTVJSON:     json.RawMessage(`{"nearest":[{"stop_id":1,"stop_name":"Gertrude St/Brunswick St","stop_suburb":"Fitzroy","route_type":1,"distance_m":180,"departures":[]}]}`),
		POIsJSON:    json.RawMessage(`{"places":[{"type":"cafe","displayName":{"text":"Corner Cafe"},"location":{"latitude":-37.8,"longitude":144.97}}]}`),
		MediansJSON: json.RawMessage(`{"suburb":"Fitzroy","house":[{"year":2023,"median_price":1500000,"sales_count":42}],"unit":[]}`),
	}
	html, err := BuildCheatSheetHTML(sampleListing(), e)
	require.NoError(t, err)

	assert.Contains(t, html, "Fitzroy Primary")
	assert.Contains(t, html, "Government Primary • 320m")
	assert.Contains(t, html, "Gertrude St/Brunswick St")
	assert.Contains(t, html, "180m away")
	assert.Contains(t, html, "Corner Cafe")
	assert.Contains(t, html, "Market Insights - Fitzroy")
	assert.Contains(t, html, "$1,500,000 (42 sales)")
	assert.Contains(t, html, "Close to quality education at Fitzroy Primary")
}

func TestBuildCheatSheetHTML_CapsPOIsAtSix(t *testing.T) {
	var pls []map[string]any
	for i := 0; i < 10; i++ {
		pls = append(pls, map[string]any{"type": "cafe", "displayName": map[string]string{"text": "Cafe"}})
	}
	raw, err := json.Marshal(map[string]any{"places": pls})
	require.NoError(t, err)

	html, err := BuildCheatSheetHTML(sampleListing(), store.Enrichment{POIsJSON: raw})
	require.NoError(t, err)
	assert.Equal(t, maxCheatSheetPOIs, strings.Count(html, `<div class="amenity-name">Cafe</div>`))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "320m", formatDistance(320))
	assert.Equal(t, "999m", formatDistance(999))
	assert.Equal(t, "1.0km", formatDistance(1000))
	assert.Equal(t, "1.5km", formatDistance(1450))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1,250,000", formatPrice("1250000"))
	assert.Equal(t, "$950", formatPrice("950"))
	// non-numeric guides pass through untouched
	assert.Equal(t, "$1.2m-$1.3m", formatPrice("$1.2m-$1.3m"))
}

func TestBuildPrompt_PerType(t *testing.T) {
	l := sampleListing()
	post := BuildPrompt(TypePost, l)
	assert.Contains(t, post, "12 Example St, Fitzroy")
	assert.Contains(t, post, "4 bedrooms, 2 bathrooms, 650 sqm land")
	assert.Contains(t, post, "Instagram square post")

	carousel := BuildPrompt(TypeCarousel, l)
	assert.Contains(t, carousel, "SWIPE FOR MORE")
	assert.Contains(t, carousel, "4BR/2BA")

	fallback := BuildPrompt("banner", l)
	assert.Contains(t, fallback, "professional social media image")
}

func TestValidType(t *testing.T) {
	for _, ty := range []string{TypePost, TypeReelsShort, TypeReelsLong, TypeReelsDeep, TypeCarousel} {
		assert.True(t, ValidType(ty), ty)
	}
	assert.False(t, ValidType("banner"))
}
