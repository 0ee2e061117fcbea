package watchmode

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

const providerName = "watchmode"

type rawSearchResponse struct {
	TitleResults []struct {
		ID int `json:"id"`
	} `json:"title_results"`
}

type rawSource struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Type   string `json:"type"`
	WebURL string `json:"web_url,omitempty"`
}

type Config struct {
	APIKey  string
	BaseURL string
	Region  string
}

// Client wraps the streaming-availability provider. Lookups are a two-step
// join: the provider's internal title id is resolved from the cross-reference
// identifier first, then regional source listings are fetched for it.
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

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Watchmode request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.NewAPIError("request failed", providerName, 502, map[string]any{
			"path": path,
		}).WithCause(err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.NewAPIError("failed to read response body", providerName, 502, nil).WithCause(err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("Watchmode non-success response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewAPIError(fmt.Sprintf("provider returned %d", resp.StatusCode), providerName, resp.StatusCode, nil)
	}

	return body, nil
}

// resolveTitleID maps a cross-reference identifier to the provider's own id.
// An unknown identifier resolves to 0 with a nil error.
func (c *Client) resolveTitleID(ctx context.Context, externalID string) (int, error) {
	params := url.Values{}
	params.Set("search_field", "imdb_id")
	params.Set("search_value", externalID)

	body, err := c.doRequest(ctx, "/search/", params)
	if err != nil {
		return 0, err
	}

	var raw rawSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("Watchmode search payload malformed", zap.String("external_id", externalID), zap.Error(err))
		return 0, nil
	}
	if len(raw.TitleResults) == 0 {
		return 0, nil
	}

	return raw.TitleResults[0].ID, nil
}

// Sources returns the regional where-to-watch listings for one
// cross-reference identifier, deduplicated by source name and filtered to
// subscription-type sources.
func (c *Client) Sources(ctx context.Context, externalID string) ([]domain.StreamingSource, error) {
	if externalID == "" {
		return []domain.StreamingSource{}, nil
	}

	titleID, err := c.resolveTitleID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if titleID == 0 {
		return []domain.StreamingSource{}, nil
	}

	params := url.Values{}
	if c.cfg.Region != "" {
		params.Set("regions", c.cfg.Region)
	}

	body, err := c.doRequest(ctx, "/title/"+strconv.Itoa(titleID)+"/sources/", params)
	if err != nil {
		return nil, err
	}

	var raw []rawSource
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Warn("Watchmode sources payload malformed", zap.Int("title_id", titleID), zap.Error(err))
		return []domain.StreamingSource{}, nil
	}

	seen := make(map[string]bool, len(raw))
	sources := make([]domain.StreamingSource, 0, len(raw))
	for _, s := range raw {
		if !strings.EqualFold(s.Type, "sub") {
			continue
		}
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		sources = append(sources, domain.StreamingSource{
			Name:   s.Name,
			Region: s.Region,
			Type:   s.Type,
			WebURL: s.WebURL,
		})
	}

	return sources, nil
}
