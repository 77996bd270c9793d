package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/growth-atlas/pkg/models/store"
	"github.com/rs/zerolog"
)

// Config holds the hosted analytics API connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client executes SQL through the hosted analytics HTTP API. It implements
// warehouse.Executor.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

type sqlRequest struct {
	ShopID string    `json:"shopId"`
	Query  string    `json:"query"`
	Period sqlPeriod `json:"period"`
}

type sqlPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ExecuteSQL posts the query to the SQL endpoint and materializes the
// returned rows. A 403 points at credentials or shop-domain permissions and
// is reported as such.
func (c *Client) ExecuteSQL(ctx context.Context, shopDomain, query string, start, end time.Time) ([]store.Row, error) {
	logger := zerolog.Ctx(ctx)

	payload, err := json.Marshal(sqlRequest{
		ShopID: shopDomain,
		Query:  query,
		Period: sqlPeriod{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sql request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/sql"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build sql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute sql request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close sql response body")
		}
	}()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("analytics API returned 403 (verify shop domain and API key permissions)")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("analytics API error %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sql response: %w", err)
	}
	return decodeRows(body)
}

// decodeRows accepts either a bare JSON array of row objects or an envelope
// with a "data" field, which is what older API versions return.
func decodeRows(body []byte) ([]store.Row, error) {
	var rows []store.Row
	if err := unmarshalNumbers(body, &rows); err == nil {
		return rows, nil
	}

	var envelope struct {
		Data []store.Row `json:"data"`
	}
	if err := unmarshalNumbers(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode sql response: %w", err)
	}
	return envelope.Data, nil
}

// unmarshalNumbers keeps numerics as json.Number so row coercion does not
// lose precision on large counters.
func unmarshalNumbers(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
