package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type Listing struct {
	ID           string
	AddressLine  string
	Suburb       string
	State        string
	Postcode     string
	Beds         sql.NullInt64
	Baths        sql.NullInt64
	Cars         sql.NullInt64
	LandSizeSqm  sql.NullInt64
	PropertyType sql.NullString
	PriceGuide   sql.NullString
	SoiURL       sql.NullString
	Lat          sql.NullFloat64
	Lng          sql.NullFloat64
	Status       string
	CreatedBy    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCoords reports whether the listing has been geocoded.
func (l Listing) HasCoords() bool { return l.Lat.Valid && l.Lng.Valid }

type CreateListingInput struct {
	AddressLine  string
	Suburb       string
	State        string
	Postcode     string
	Beds         sql.NullInt64
	Baths        sql.NullInt64
	Cars         sql.NullInt64
	LandSizeSqm  sql.NullInt64
	PropertyType sql.NullString
	PriceGuide   sql.NullString
	SoiURL       sql.NullString
	CreatedBy    sql.NullString
}

const listingCols = `id, address_line, suburb, state, postcode, beds, baths, cars,
    land_size_sqm, property_type, price_guide_text, soi_url, lat, lng, status,
    created_by, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.AddressLine, &l.Suburb, &l.State, &l.Postcode,
		&l.Beds, &l.Baths, &l.Cars, &l.LandSizeSqm, &l.PropertyType,
		&l.PriceGuide, &l.SoiURL, &l.Lat, &l.Lng, &l.Status,
		&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (s *Store) CreateListing(ctx context.Context, in CreateListingInput) (Listing, error) {
	id := uuid.NewString()
	state := in.State
	if state == "" {
		state = "VIC"
	}
	row := s.DB.QueryRowContext(ctx, `
        INSERT INTO listings (id, address_line, suburb, state, postcode, beds, baths, cars,
            land_size_sqm, property_type, price_guide_text, soi_url, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING `+listingCols,
		id, in.AddressLine, in.Suburb, state, in.Postcode, in.Beds, in.Baths, in.Cars,
		in.LandSizeSqm, in.PropertyType, in.PriceGuide, in.SoiURL, in.CreatedBy)
	return scanListing(row)
}

func (s *Store) GetListing(ctx context.Context, id string) (Listing, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+listingCols+` FROM listings WHERE id=$1`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	return l, err
}

func (s *Store) ListListings(ctx context.Context, status string, limit int) ([]Listing, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT ` + listingCols + ` FROM listings`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type UpdateListingInput struct {
	Beds         *int64
	Baths        *int64
	Cars         *int64
	LandSizeSqm  *int64
	PropertyType *string
	PriceGuide   *string
	SoiURL       *string
	Status       *string
}

func (s *Store) UpdateListing(ctx context.Context, id string, in UpdateListingInput) (Listing, error) {
	row := s.DB.QueryRowContext(ctx, `
        UPDATE listings SET
            beds             = COALESCE($2, beds),
            baths            = COALESCE($3, baths),
            cars             = COALESCE($4, cars),
            land_size_sqm    = COALESCE($5, land_size_sqm),
            property_type    = COALESCE($6, property_type),
            price_guide_text = COALESCE($7, price_guide_text),
            soi_url          = COALESCE($8, soi_url),
            status           = COALESCE($9, status),
            updated_at       = now()
        WHERE id=$1
        RETURNING `+listingCols,
		id, in.Beds, in.Baths, in.Cars, in.LandSizeSqm, in.PropertyType,
		in.PriceGuide, in.SoiURL, in.Status)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	return l, err
}

// SetListingCoords writes geocoded coordinates onto the listing. This is a
// side effect independent of the enrichment upsert so other readers benefit
// even if later steps fail.
func (s *Store) SetListingCoords(ctx context.Context, id string, lat, lng float64) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE listings SET lat=$2, lng=$3, updated_at=now() WHERE id=$1`, id, lat, lng)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
