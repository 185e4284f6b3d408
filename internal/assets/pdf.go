package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

var ErrPDFNotConfigured = errors.New("pdf renderer not configured")

// PDFRenderer posts HTML to a render service that returns a hosted PDF URL.
// Callers fall back to returning the raw HTML for browser printing when the
// service is unconfigured or down.
type PDFRenderer struct {
	url  string
	http *retryablehttp.Client
	log  *slog.Logger
}

func NewPDFRenderer(url string, log *slog.Logger) *PDFRenderer {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	if log == nil {
		log = slog.Default()
	}
	return &PDFRenderer{url: url, http: rc, log: log}
}

func (p *PDFRenderer) Configured() bool { return p.url != "" }

// Render converts HTML to a hosted PDF and returns its URL.
func (p *PDFRenderer) Render(ctx context.Context, html string) (string, error) {
	if !p.Configured() {
		return "", ErrPDFNotConfigured
	}
	b, err := json.Marshal(map[string]string{"html": html})
	if err != nil {
		return "", err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("pdf renderer HTTP %d", resp.StatusCode)
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.URL == "" {
		return "", errors.New("pdf renderer returned no url")
	}
	return body.URL, nil
}
