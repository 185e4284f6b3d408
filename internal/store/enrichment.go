package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Enrichment is the denormalized bundle of location-derived facts for one
// listing. Sub-documents are stored as raw JSON because each provider owns
// its own shape; every one of them is independently optional.
type Enrichment struct {
	ListingID       string          `json:"listing_id"`
	SchoolsJSON     json.RawMessage `json:"schools_json,omitempty"`
	PlanningJSON    json.RawMessage `json:"planning_overlays_json,omitempty"`
	HeritageJSON    json.RawMessage `json:"heritage_json,omitempty"`
	PTVJSON         json.RawMessage `json:"ptv_json,omitempty"`
	POIsJSON        json.RawMessage `json:"pois_json,omitempty"`
	MediansJSON     json.RawMessage `json:"suburb_medians_json,omitempty"`
	DisclaimersJSON json.RawMessage `json:"disclaimers_json,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// UpsertEnrichment fully replaces the enrichment record for a listing.
// Re-enrichment is not a field-level merge: a prior record is overwritten
// wholesale so stale sub-documents cannot survive.
func (s *Store) UpsertEnrichment(ctx context.Context, e Enrichment) error {
	_, err := s.DB.ExecContext(ctx, `
        INSERT INTO enrichment (listing_id, schools_json, planning_overlays_json,
            heritage_json, ptv_json, pois_json, suburb_medians_json,
            disclaimers_json, generated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (listing_id) DO UPDATE SET
            schools_json           = EXCLUDED.schools_json,
            planning_overlays_json = EXCLUDED.planning_overlays_json,
            heritage_json          = EXCLUDED.heritage_json,
            ptv_json               = EXCLUDED.ptv_json,
            pois_json              = EXCLUDED.pois_json,
            suburb_medians_json    = EXCLUDED.suburb_medians_json,
            disclaimers_json       = EXCLUDED.disclaimers_json,
            generated_at           = EXCLUDED.generated_at`,
		e.ListingID, nullJSON(e.SchoolsJSON), nullJSON(e.PlanningJSON),
		nullJSON(e.HeritageJSON), nullJSON(e.PTVJSON), nullJSON(e.POIsJSON),
		nullJSON(e.MediansJSON), nullJSON(e.DisclaimersJSON), e.GeneratedAt)
	return err
}

func (s *Store) GetEnrichment(ctx context.Context, listingID string) (Enrichment, error) {
	var e Enrichment
	var schools, planning, heritage, ptv, pois, medians, disclaimers []byte
	var generated sql.NullTime
	err := s.DB.QueryRowContext(ctx, `
        SELECT listing_id, schools_json, planning_overlays_json, heritage_json,
               ptv_json, pois_json, suburb_medians_json, disclaimers_json, generated_at
        FROM enrichment WHERE listing_id=$1`, listingID).
		Scan(&e.ListingID, &schools, &planning, &heritage, &ptv, &pois, &medians,
			&disclaimers, &generated)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, err
	}
	e.SchoolsJSON = schools
	e.PlanningJSON = planning
	e.HeritageJSON = heritage
	e.PTVJSON = ptv
	e.POIsJSON = pois
	e.MediansJSON = medians
	e.DisclaimersJSON = disclaimers
	if generated.Valid {
		e.GeneratedAt = generated.Time
	}
	return e, nil
}

func nullJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
