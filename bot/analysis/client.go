// Package analysis talks to the external analysis webhook and drives the
// progress message while a request is outstanding.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/signalbot/bot/catalog"
)

const maxBody = 1 << 20

// Request is the webhook payload.
type Request struct {
	UserID      int64        `json:"userId"`
	MarketType  string       `json:"marketType"`
	Symbol      string       `json:"symbol"`
	Timeframe   string       `json:"timeframe"`
	AI          string       `json:"ai"`
	Type        catalog.Kind `json:"type"`
	Indicators  []string     `json:"indicators"`
	PlanDetails string       `json:"plan_details,omitempty"`
}

// Result is a successful webhook answer.
type Result struct {
	RequestID string
	// Text is the trading plan body; empty for signals.
	Text string
}

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("Webhook API error: %d - %s", e.Code, body)
}

// Client posts requests to one webhook URL. It never retries: a repeated
// request could be billed twice by the analysis service.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client bounded by timeout per request.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Analyze sends req and waits for the answer.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("analysis: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analysis: build request: %w", err)
	}
	id := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", id)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis: post: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("analysis: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	res := &Result{RequestID: id}
	if req.Type == catalog.KindPlan {
		var out struct {
			TradingPlanText string `json:"trading_plan_text"`
			Text            string `json:"text"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("analysis: decode trading plan: %w", err)
		}
		res.Text = out.TradingPlanText
		if res.Text == "" {
			res.Text = out.Text
		}
	}
	return res, nil
}
