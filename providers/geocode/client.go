package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/yourorg/listings-api/internal/canon"
	"github.com/yourorg/listings-api/internal/fetchcache"
)

// Result is the normalized geocoder output.
type Result struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
	Source           string  `json:"source"`
}

var (
	ErrAddressRequired = errors.New("address required")
	ErrNoMatch         = errors.New("no geocode result")
)

// Client geocodes via Google when a key is configured and falls back to
// Nominatim. Geocoding has no safe stub: without coordinates there is no
// meaningful enrichment, so failures surface as errors.
type Client struct {
	googleKey    string
	googleURL    string
	nominatimURL string
	userAgent    string
	limiter      *rate.Limiter // Nominatim usage policy caps at 1 req/s
	http         *retryablehttp.Client
	cache        *fetchcache.Cache
	log          *slog.Logger
}

func NewClient(googleKey string, cache *fetchcache.Cache, log *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 6 * time.Second
	rc.Logger = nil
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		googleKey:    googleKey,
		googleURL:    "https://maps.googleapis.com/maps/api/geocode/json",
		nominatimURL: "https://nominatim.openstreetmap.org/search",
		userAgent:    "acme-listings/1.0",
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		http:         rc,
		cache:        cache,
		log:          log,
	}
}

// Lookup resolves an address to coordinates, consulting the fetch cache
// first. Google is preferred; Nominatim is the keyless fallback.
func (c *Client) Lookup(ctx context.Context, address string) (Result, error) {
	if address == "" {
		return Result{}, ErrAddressRequired
	}

	// keyed on the canonical form so spelling variants share an entry
	cacheKey := fetchcache.Key("geocode", canon.FreeformKey(address))
	if payload, _, ok := c.cache.Get(ctx, cacheKey); ok {
		var r Result
		if err := json.Unmarshal(payload, &r); err == nil {
			return r, nil
		}
	}

	var r Result
	var err error
	if c.googleKey != "" {
		r, err = c.google(ctx, address)
		if err != nil {
			c.log.Warn("google geocode failed, falling back", "error", err)
		}
	}
	if c.googleKey == "" || err != nil {
		r, err = c.nominatim(ctx, address)
	}
	if err != nil {
		return Result{}, err
	}

	if b, merr := json.Marshal(r); merr == nil {
		c.cache.Put(ctx, cacheKey, b, "")
	}
	return r, nil
}

func (c *Client) google(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.googleKey)
	u := c.googleURL + "?" + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("google geocode HTTP %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, err
	}
	if len(body.Results) == 0 {
		return Result{}, ErrNoMatch
	}
	best := body.Results[0]
	return Result{
		Lat:              best.Geometry.Location.Lat,
		Lng:              best.Geometry.Location.Lng,
		FormattedAddress: best.FormattedAddress,
		Source:           "google",
	}, nil
}

func (c *Client) nominatim(ctx context.Context, address string) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("q", address)
	q.Set("addressdetails", "1")
	u := c.nominatimURL + "?" + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("nominatim HTTP %d", resp.StatusCode)
	}

	var body []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, err
	}
	if len(body) == 0 {
		return Result{}, ErrNoMatch
	}
	lat, err := strconv.ParseFloat(body[0].Lat, 64)
	if err != nil {
		return Result{}, err
	}
	lng, err := strconv.ParseFloat(body[0].Lon, 64)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: body[0].DisplayName,
		Source:           "nominatim",
	}, nil
}
