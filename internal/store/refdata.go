package store

import "context"

// School is a row of the reference dataset the schools adapter ranks against.
type School struct {
	ID       int64
	Name     string
	Sector   string
	Level    string
	Lat      float64
	Lng      float64
	Address  string
	Suburb   string
	Postcode string
}

func (s *Store) ListSchools(ctx context.Context) ([]School, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, name, COALESCE(sector,''), COALESCE(level,''),
               COALESCE(lat,0), COALESCE(lng,0), COALESCE(address,''),
               COALESCE(suburb,''), COALESCE(postcode,'')
        FROM schools`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []School
	for rows.Next() {
		var sc School
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Sector, &sc.Level, &sc.Lat,
			&sc.Lng, &sc.Address, &sc.Suburb, &sc.Postcode); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ReplaceSchools swaps the whole reference dataset in one transaction so a
// partial import never leaves the table half loaded.
func (s *Store) ReplaceSchools(ctx context.Context, list []School) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM schools`); err != nil {
		return err
	}
	for _, sc := range list {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO schools (name, sector, level, lat, lng, address, suburb, postcode)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			sc.Name, sc.Sector, sc.Level, sc.Lat, sc.Lng, sc.Address, sc.Suburb, sc.Postcode); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MedianPoint is one year of a suburb median series.
type MedianPoint struct {
	Year        int     `json:"year"`
	MedianPrice float64 `json:"median_price"`
	SalesCount  int     `json:"sales_count"`
}

// ListMedians returns the series for one suburb and property type, year
// ascending. An unknown suburb yields an empty slice, not an error.
func (s *Store) ListMedians(ctx context.Context, suburb, propertyType string) ([]MedianPoint, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT year, COALESCE(median_price,0), COALESCE(sales_count,0)
        FROM vgv_medians
        WHERE suburb=$1 AND property_type=$2
        ORDER BY year ASC`, suburb, propertyType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MedianPoint{}
	for rows.Next() {
		var m MedianPoint
		if err := rows.Scan(&m.Year, &m.MedianPrice, &m.SalesCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MedianRow is one import record of the medians dataset.
type MedianRow struct {
	Suburb       string
	PropertyType string
	Year         int
	MedianPrice  float64
	SalesCount   int
}

// ReplaceMedians swaps the whole medians dataset in one transaction.
func (s *Store) ReplaceMedians(ctx context.Context, rows []MedianRow) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM vgv_medians`); err != nil {
		return err
	}
	for _, m := range rows {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO vgv_medians (suburb, property_type, year, median_price, sales_count)
            VALUES ($1,$2,$3,$4,$5)`,
			m.Suburb, m.PropertyType, m.Year, m.MedianPrice, m.SalesCount); err != nil {
			return err
		}
	}
	return tx.Commit()
}
