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

const (
	defaultGatewayURL = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultModel      = "google/gemini-2.5-flash-image-preview"
)

var (
	ErrGatewayNotConfigured = errors.New("image gateway not configured")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrPaymentRequired      = errors.New("payment required")
	ErrNoImage              = errors.New("no image generated")
)

type GeneratedImage struct {
	URL     string `json:"imageUrl"`
	Message string `json:"message,omitempty"`
}

// Gateway calls an OpenAI-compatible chat completions endpoint in image
// modality and extracts the generated image URL.
type Gateway struct {
	url   string
	key   string
	model string
	http  *retryablehttp.Client
	log   *slog.Logger
}

func NewGateway(url, key, model string, log *slog.Logger) *Gateway {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 60 * time.Second // image generation is slow
	rc.Logger = nil
	// the gateway's 429 means quota, not transience; do not retry into it
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired) {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if url == "" {
		url = defaultGatewayURL
	}
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{url: url, key: key, model: model, http: rc, log: log}
}

func (g *Gateway) Configured() bool { return g.key != "" }

// GenerateImage submits a prompt and returns the hosted image URL.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string) (GeneratedImage, error) {
	if !g.Configured() {
		return GeneratedImage{}, ErrGatewayNotConfigured
	}

	payload := map[string]any{
		"model": g.model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"modalities": []string{"image", "text"},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return GeneratedImage{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(b))
	if err != nil {
		return GeneratedImage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return GeneratedImage{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return GeneratedImage{}, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return GeneratedImage{}, ErrPaymentRequired
	case resp.StatusCode >= 400:
		return GeneratedImage{}, fmt.Errorf("image gateway HTTP %d", resp.StatusCode)
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Images  []struct {
					ImageURL struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"images"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GeneratedImage{}, err
	}
	if len(body.Choices) == 0 || len(body.Choices[0].Message.Images) == 0 {
		return GeneratedImage{}, ErrNoImage
	}
	url := body.Choices[0].Message.Images[0].ImageURL.URL
	if url == "" {
		return GeneratedImage{}, ErrNoImage
	}
	return GeneratedImage{URL: url, Message: body.Choices[0].Message.Content}, nil
}
