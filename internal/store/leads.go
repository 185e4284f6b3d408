package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Lead is an inbound inquiry. Append-only: rows are never mutated.
type Lead struct {
	ID        int64           `json:"id"`
	ListingID string          `json:"listing_id"`
	Name      sql.NullString  `json:"-"`
	Email     sql.NullString  `json:"-"`
	Phone     sql.NullString  `json:"-"`
	Source    sql.NullString  `json:"-"`
	UTMJSON   json.RawMessage `json:"utm,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateLeadInput struct {
	ListingID string
	Name      string
	Email     string
	Phone     string
	Source    string
	UTMJSON   json.RawMessage
}

func (s *Store) CreateLead(ctx context.Context, in CreateLeadInput) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
        INSERT INTO leads (listing_id, name, email, phone, source, utm_json)
        VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		in.ListingID, nullStr(in.Name), nullStr(in.Email), nullStr(in.Phone),
		nullStr(in.Source), nullJSON(in.UTMJSON)).Scan(&id)
	return id, err
}

func (s *Store) ListLeads(ctx context.Context, listingID string) ([]Lead, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, listing_id, name, email, phone, source, utm_json, created_at
        FROM leads WHERE listing_id=$1 ORDER BY created_at DESC`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Lead
	for rows.Next() {
		var l Lead
		var utm []byte
		if err := rows.Scan(&l.ID, &l.ListingID, &l.Name, &l.Email, &l.Phone,
			&l.Source, &utm, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.UTMJSON = utm
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
