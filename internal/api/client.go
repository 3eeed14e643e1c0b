// Package api is the FoodChain backend client. It covers the voice-intent,
// price-history, supply-chain, scenario, and alert-dispatch endpoints. All
// responses are opaque JSON from the caller's perspective; this package only
// decodes them, it never computes marketplace state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"foodchain/internal/logging"
	"foodchain/internal/types"
)

// Client talks to the FoodChain backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VoiceReply is the voice-intent endpoint's tagged response. ResponseType
// selects which payload field is meaningful.
type VoiceReply struct {
	ResponseType  string              `json:"response_type"`
	Analysis      *types.SellAnalysis `json:"analysis,omitempty"`
	Crop          string              `json:"crop,omitempty"`
	Mandis        []types.VendorQuote `json:"mandis,omitempty"`
	Advice        *types.Advice       `json:"advice,omitempty"`
	Weather       *types.Weather      `json:"weather,omitempty"`
	SpokenSummary string              `json:"spoken_summary,omitempty"`
	ParsedCommand *types.SellRequest  `json:"parsed_command,omitempty"`
}

// VoiceIntent submits a free-form utterance with the caller's position.
func (c *Client) VoiceIntent(ctx context.Context, text string, pos types.LatLng) (*VoiceReply, error) {
	body := map[string]interface{}{"text": text, "lat": pos.Lat, "lng": pos.Lng}
	var reply VoiceReply
	if err := c.post(ctx, "/api/farmer/voice", body, &reply); err != nil {
		return nil, err
	}
	if reply.ResponseType == "" {
		reply.ResponseType = "error"
	}
	return &reply, nil
}

// PriceHistory fetches the trailing price window for a commodity.
func (c *Client) PriceHistory(ctx context.Context, crop string, days int) (*types.PriceHistory, error) {
	q := url.Values{}
	q.Set("crop", crop)
	q.Set("days", fmt.Sprintf("%d", days))

	var h types.PriceHistory
	if err := c.get(ctx, "/api/farmer/price-history?"+q.Encode(), &h); err != nil {
		return nil, err
	}
	h.Crop = crop
	return &h, nil
}

// Scenario recomputes predicted metrics for one slider triple.
func (c *Client) Scenario(ctx context.Context, in types.ScenarioInputs) (*types.ScenarioResult, error) {
	var res types.ScenarioResult
	if err := c.post(ctx, "/api/mandi/supply-chain/scenario", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AlertRequest is the alert-dispatch payload.
type AlertRequest struct {
	RiskLevel string           `json:"risk_level"`
	RiskScore float64          `json:"risk_score"`
	Message   string           `json:"message"`
	Signals   []AlertSignalRef `json:"signals"`
}

// AlertSignalRef names one active signal in an alert request.
type AlertSignalRef struct {
	Title string `json:"title"`
}

// AlertSimulate triggers the alert ladder for one severity level.
func (c *Client) AlertSimulate(ctx context.Context, req AlertRequest) (*types.AlertDispatch, error) {
	var res types.AlertDispatch
	if err := c.post(ctx, "/api/mandi/supply-chain/alert-simulate", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	log := logging.Get(logging.CategoryAPI)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("%s %s failed: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn("%s %s status %d", req.Method, req.URL.Path, resp.StatusCode)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	log.Debug("%s %s ok in %v", req.Method, req.URL.Path, time.Since(start))
	return nil
}
