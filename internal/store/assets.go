package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SocialAsset lifecycle: draft -> ready, or declined -> draft.
type SocialAsset struct {
	ID          int64           `json:"id"`
	ListingID   string          `json:"listing_id"`
	Type        string          `json:"type"`
	PayloadJSON json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *Store) CreateSocialAsset(ctx context.Context, listingID, assetType string, payload json.RawMessage) (SocialAsset, error) {
	var a SocialAsset
	var raw []byte
	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO social_assets (listing_id, type, payload_json, status)
        VALUES ($1,$2,$3,'draft')
        RETURNING id, listing_id, type, payload_json, status, created_at`,
		listingID, assetType, string(payload)).
		Scan(&a.ID, &a.ListingID, &a.Type, &raw, &a.Status, &a.CreatedAt)
	a.PayloadJSON = raw
	return a, err
}

var ErrBadTransition = errors.New("invalid status transition")

var assetTransitions = map[string]map[string]bool{
	"draft":    {"ready": true, "declined": true},
	"ready":    {"declined": true},
	"declined": {"draft": true},
}

// SetSocialAssetStatus enforces the asset lifecycle.
func (s *Store) SetSocialAssetStatus(ctx context.Context, id int64, status string) (SocialAsset, error) {
	var a SocialAsset
	var raw []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, listing_id, type, payload_json, status, created_at FROM social_assets WHERE id=$1`, id).
		Scan(&a.ID, &a.ListingID, &a.Type, &raw, &a.Status, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	a.PayloadJSON = raw
	if !assetTransitions[a.Status][status] {
		return a, fmt.Errorf("%w: %s -> %s", ErrBadTransition, a.Status, status)
	}
	// guard on the observed status so a concurrent transition cannot slip
	// past the check above
	res, err := s.DB.ExecContext(ctx,
		`UPDATE social_assets SET status=$2 WHERE id=$1 AND status=$3`, id, status, a.Status)
	if err != nil {
		return a, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return a, fmt.Errorf("%w: asset %d changed concurrently", ErrBadTransition, id)
	}
	a.Status = status
	return a, nil
}

func (s *Store) ListSocialAssets(ctx context.Context, listingID string) ([]SocialAsset, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, listing_id, type, payload_json, status, created_at
        FROM social_assets WHERE listing_id=$1 ORDER BY created_at DESC`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SocialAsset
	for rows.Next() {
		var a SocialAsset
		var raw []byte
		if err := rows.Scan(&a.ID, &a.ListingID, &a.Type, &raw, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.PayloadJSON = raw
		out = append(out, a)
	}
	return out, rows.Err()
}
