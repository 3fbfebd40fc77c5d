package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const ordersPath = "/api/orders"

// HTTPClient talks to a remote order service over JSON.
type HTTPClient struct {
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid order service url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid order service url %q: scheme and host required", baseURL)
	}
	return &HTTPClient{BaseURL: u, HTTP: &http.Client{Timeout: timeout}}, nil
}

type createOrderResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &SubmissionError{Message: FallbackMessage, Err: err}
	}

	u := c.BaseURL.ResolveReference(&url.URL{Path: ordersPath})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", &SubmissionError{Message: FallbackMessage, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", &SubmissionError{Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &SubmissionError{Message: FallbackMessage, Status: resp.StatusCode, Err: err}
	}

	var out createOrderResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(out.Error)
		if decodeErr != nil || msg == "" {
			msg = FallbackMessage
		}
		return "", &SubmissionError{
			Message: msg,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("order service responded %d", resp.StatusCode),
		}
	}

	if decodeErr != nil {
		return "", &SubmissionError{Message: FallbackMessage, Status: resp.StatusCode, Err: decodeErr}
	}
	if out.ID == "" {
		return "", &SubmissionError{
			Message: FallbackMessage,
			Status:  resp.StatusCode,
			Err:     errors.New("order service returned no id"),
		}
	}
	return out.ID, nil
}
