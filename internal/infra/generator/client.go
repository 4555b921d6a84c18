package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client calls the ad copy generation service.
type Client interface {
	GenerateAdCopy(ctx context.Context, in CopyRequest) (*CopyResult, error)
}

type client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, logger zerolog.Logger) Client {
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With().Str("service", "GeneratorClient").Logger(),
	}
}

type CopyRequest struct {
	Product  string `json:"product"`
	Audience string `json:"audience"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
	Brief    string `json:"brief,omitempty"`
}

type CopyResult struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

func (c *client) GenerateAdCopy(ctx context.Context, in CopyRequest) (*CopyResult, error) {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	url := fmt.Sprintf("%s/generate/ad-copy", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request to generator service: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.logger.Warn().Err(readErr).Int("status_code", resp.StatusCode).Msg("Failed to read error body from generator service")
			return nil, fmt.Errorf("generator service returned status %d", resp.StatusCode)
		}

		errorMsg := string(bodyBytes)
		c.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("error_body", errorMsg).
			Msg("Generator service returned error")

		return nil, fmt.Errorf("generator service returned status %d: %s", resp.StatusCode, errorMsg)
	}

	var out CopyResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}
