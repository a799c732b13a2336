// Package checkout talks to the external payment API that turns a funnel
// payload into a hosted checkout page.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a checkout request when the caller configures none.
const DefaultTimeout = 20 * time.Second

// createPaymentPath is appended to the configured base URL.
const createPaymentPath = "/api/checkout/create-payment"

// maxResponseBytes caps how much of a payment API response is read.
const maxResponseBytes = 1 << 20

// fallbackMessage is used when a failed response carries no error message.
const fallbackMessage = "the checkout server returned an error"

// Request is the JSON body sent to the payment API. FormData carries the
// merged calculator and questionnaire fields and is passed through as-is.
type Request struct {
	PlanType       string `json:"planType"`
	ClientName     string `json:"clientName"`
	ClientEmail    string `json:"clientEmail"`
	ClientWhatsapp string `json:"clientWhatsapp"`
	FormData       any    `json:"formData"`
}

// Response is the successful reply. CheckoutURL is where the browser must be
// redirected; Raw keeps the full body for logging.
type Response struct {
	CheckoutURL string          `json:"checkoutUrl"`
	Raw         json.RawMessage `json:"-"`
}

// RemoteError reports a checkout failure the visitor can retry: a non-2xx
// status, an unreadable body, or a success reply without a checkout URL.
// Message is safe to show to the visitor.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("checkout failed (status %d): %s", e.StatusCode, e.Message)
}

// Client creates checkouts against one base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client with the given request timeout (DefaultTimeout
// when <= 0). A hung payment API therefore can't stall the funnel forever.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateCheckout posts req to the payment API. Transport failures (timeouts,
// refused connections, ctx cancellation) are returned wrapped; every failure
// reported by the API itself is a *RemoteError.
func (c *Client) CreateCheckout(ctx context.Context, req Request) (*Response, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPaymentPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := fallbackMessage
		if json.Unmarshal(respBytes, &errBody) == nil && strings.TrimSpace(errBody.Error) != "" {
			msg = errBody.Error
		}
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out Response
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: "the checkout server sent an unreadable response"}
	}
	if out.CheckoutURL == "" {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: "the checkout response did not include a checkout URL"}
	}
	out.Raw = respBytes
	return &out, nil
}
