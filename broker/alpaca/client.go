// Package alpaca is a thin REST adapter over the Alpaca trading and
// market-data APIs, covering the account, position, order, and daily
// bar endpoints this system consumes.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rustyeddy/tradecycle/broker"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/risk"
)

const (
	// PaperURL is the paper-trading environment.
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the live trading environment.
	LiveURL = "https://api.alpaca.markets"
	// DataURL serves historical market data for both environments.
	DataURL = "https://data.alpaca.markets"
)

// Client calls the Alpaca REST API. It implements broker.Broker.
type Client struct {
	baseURL    string
	dataURL    string
	key        string
	secret     string
	httpClient *http.Client

	// Transient API failures are retried a bounded number of times.
	// The pipeline itself never retries; it sees one submit call.
	maxRetries int
	retryWait  time.Duration
}

// NewClient creates a client against the paper or live environment.
func NewClient(key, secret string, paper bool) *Client {
	baseURL := LiveURL
	if paper {
		baseURL = PaperURL
	}
	return &Client{
		baseURL: baseURL,
		dataURL: DataURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		retryWait:  1500 * time.Millisecond,
	}
}

type apiAccount struct {
	Equity string `json:"equity"`
	Status string `json:"status"`
}

type apiPosition struct {
	Qty string `json:"qty"`
}

type apiOrder struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	SubmittedAt string `json:"submitted_at"`
}

// AccountSnapshot fetches equity and validates it is usable.
func (c *Client) AccountSnapshot(ctx context.Context) (risk.AccountSnapshot, error) {
	var acct apiAccount
	if err := c.get(ctx, c.baseURL+"/v2/account", &acct); err != nil {
		return risk.AccountSnapshot{}, fmt.Errorf("%w: %v", risk.ErrAccountState, err)
	}
	equity, err := strconv.ParseFloat(acct.Equity, 64)
	if err != nil || equity <= 0 {
		return risk.AccountSnapshot{}, fmt.Errorf("%w: equity %q", risk.ErrAccountState, acct.Equity)
	}
	return risk.AccountSnapshot{Equity: equity}, nil
}

// Position returns the signed share quantity held for symbol. A 404
// means no open position. A fractional position is rounded toward zero
// so the reported whole-share quantity never exceeds what is held on
// either side, since sizing caps derive from this value.
func (c *Client) Position(ctx context.Context, symbol string) (int, error) {
	var pos apiPosition
	err := c.get(ctx, c.baseURL+"/v2/positions/"+symbol, &pos)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", risk.ErrAccountState, err)
	}
	qty, err := strconv.ParseFloat(pos.Qty, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: position qty %q", risk.ErrAccountState, pos.Qty)
	}
	return int(math.Trunc(qty)), nil
}

// SubmitOrder places a day market order for the plan.
func (c *Client) SubmitOrder(ctx context.Context, plan execution.OrderPlan) (broker.OrderConfirmation, error) {
	body := map[string]string{
		"symbol":        plan.Symbol,
		"qty":           strconv.Itoa(plan.Quantity),
		"side":          sideParam(plan.Side),
		"type":          "market",
		"time_in_force": "day",
	}

	var order apiOrder
	if err := c.post(ctx, c.baseURL+"/v2/orders", body, &order); err != nil {
		return broker.OrderConfirmation{}, fmt.Errorf("%w: %v", broker.ErrBroker, err)
	}

	submitted, err := time.Parse(time.RFC3339, order.SubmittedAt)
	if err != nil {
		submitted = time.Now().UTC()
	}
	return broker.OrderConfirmation{
		OrderID:  order.ID,
		Symbol:   order.Symbol,
		Side:     plan.Side,
		Quantity: plan.Quantity,
		Time:     submitted,
	}, nil
}

func sideParam(s execution.Side) string {
	if s == execution.Sell {
		return "sell"
	}
	return "buy"
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, url, b, out)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.code, e.body)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.doOnce(ctx, method, url, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		// Only transient server-side failures are worth retrying.
		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError {
			return err
		}
		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryWait):
			}
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, url string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.key)
	req.Header.Set("APCA-API-SECRET-KEY", c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
