// seedref loads the schools and suburb-medians reference datasets from CSV
// into Postgres. Each file replaces its table wholesale.
//
// Schools CSV columns:  name,sector,level,lat,lng,address,suburb,postcode
// Medians CSV columns:  suburb,property_type,year,median_price,sales_count
package main

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/yourorg/listings-api/internal/env"
	"github.com/yourorg/listings-api/internal/store"
)

func main() {
	env.Load()
	dsn := env.Must("DATABASE_URL")

	schoolsPath := os.Getenv("SCHOOLS_CSV")
	mediansPath := os.Getenv("MEDIANS_CSV")
	if schoolsPath == "" && mediansPath == "" {
		log.Fatal("set SCHOOLS_CSV and/or MEDIANS_CSV")
	}

	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("store open error: %v", err)
	}
	defer st.DB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("postgres ping error: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate error: %v", err)
	}

	if schoolsPath != "" {
		list, err := readSchools(schoolsPath)
		if err != nil {
			log.Fatalf("reading %s: %v", schoolsPath, err)
		}
		if err := st.ReplaceSchools(ctx, list); err != nil {
			log.Fatalf("loading schools: %v", err)
		}
		log.Printf("loaded %d schools", len(list))
	}

	if mediansPath != "" {
		rows, err := readMedians(mediansPath)
		if err != nil {
			log.Fatalf("reading %s: %v", mediansPath, err)
		}
		if err := st.ReplaceMedians(ctx, rows); err != nil {
			log.Fatalf("loading medians: %v", err)
		}
		log.Printf("loaded %d median rows", len(rows))
	}
}

func readSchools(path string) ([]store.School, error) {
	recs, err := readCSV(path, 8)
	if err != nil {
		return nil, err
	}
	out := make([]store.School, 0, len(recs))
	for _, rec := range recs {
		lat, _ := strconv.ParseFloat(rec[3], 64)
		lng, _ := strconv.ParseFloat(rec[4], 64)
		out = append(out, store.School{
			Name:     rec[0],
			Sector:   rec[1],
			Level:    rec[2],
			Lat:      lat,
			Lng:      lng,
			Address:  rec[5],
			Suburb:   rec[6],
			Postcode: rec[7],
		})
	}
	return out, nil
}

func readMedians(path string) ([]store.MedianRow, error) {
	recs, err := readCSV(path, 5)
	if err != nil {
		return nil, err
	}
	out := make([]store.MedianRow, 0, len(recs))
	for _, rec := range recs {
		year, _ := strconv.Atoi(rec[2])
		price, _ := strconv.ParseFloat(rec[3], 64)
		sales, _ := strconv.Atoi(rec[4])
		out = append(out, store.MedianRow{
			Suburb:       rec[0],
			PropertyType: rec[1],
			Year:         year,
			MedianPrice:  price,
			SalesCount:   sales,
		})
	}
	return out, nil
}

// readCSV returns all data rows, skipping a header line if the first field
// is not parseable data.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	var out [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if rec[0] == "name" || rec[0] == "suburb" {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
