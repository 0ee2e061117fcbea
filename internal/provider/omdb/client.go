package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"showdeck/internal/domain"
	"showdeck/pkg/errors"
)

const providerName = "omdb"

type rawReception struct {
	Response   string `json:"Response"`
	Error      string `json:"Error,omitempty"`
	Awards     string `json:"Awards,omitempty"`
	Director   string `json:"Director,omitempty"`
	Writer     string `json:"Writer,omitempty"`
	Metascore  string `json:"Metascore,omitempty"`
	IMDBRating string `json:"imdbRating,omitempty"`
	IMDBVotes  string `json:"imdbVotes,omitempty"`
}

type Config struct {
	APIKey  string
	BaseURL string
}

// Client wraps the secondary enrichment provider, keyed by cross-reference
// identifier.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// FetchReception looks up critical-reception attributes for one
// cross-reference identifier. A provider "not found" answer is returned as
// (nil, nil): no enrichment, not an error.
func (c *Client) FetchReception(ctx context.Context, externalID string) (*domain.Reception, error) {
	if externalID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", c.cfg.APIKey)
	params.Set("i", externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("OMDb request failed", zap.String("external_id", externalID), zap.Error(err))
		return nil, errors.NewAPIError("request failed", providerName, 502, map[string]any{
			"external_id": externalID,
		}).WithCause(err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.NewAPIError("failed to read response body", providerName, 502, nil).WithCause(err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("OMDb non-success response",
			zap.String("external_id", externalID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewAPIError(fmt.Sprintf("provider returned %d", resp.StatusCode), providerName, resp.StatusCode, nil)
	}

	var raw rawReception
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("OMDb payload malformed", zap.String("external_id", externalID), zap.Error(err))
		return nil, nil
	}

	// OMDb signals "not found" inside a 200 response.
	if !strings.EqualFold(raw.Response, "True") {
		c.logger.Debug("OMDb reported no match",
			zap.String("external_id", externalID),
			zap.String("reason", raw.Error),
		)
		return nil, nil
	}

	return mapReception(&raw), nil
}

func mapReception(raw *rawReception) *domain.Reception {
	rec := &domain.Reception{}

	if raw.Awards != "" && raw.Awards != "N/A" {
		rec.Awards = raw.Awards
	}
	if raw.Director != "" && raw.Director != "N/A" {
		rec.Director = raw.Director
	}
	if raw.Writer != "" && raw.Writer != "N/A" {
		rec.Writer = raw.Writer
	}
	if score, err := strconv.Atoi(raw.Metascore); err == nil {
		rec.CriticScore = score
	}
	if rating, err := strconv.ParseFloat(raw.IMDBRating, 64); err == nil {
		rec.ExternalRating = rating
	}
	if votes, err := strconv.Atoi(strings.ReplaceAll(raw.IMDBVotes, ",", "")); err == nil {
		rec.ExternalVotes = votes
	}

	return rec
}
