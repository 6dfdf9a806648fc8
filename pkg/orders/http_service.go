package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPService talks to the storefront's order API. Authentication uses the
// store's REST key pair as basic auth, matching a WooCommerce-style setup.
type HTTPService struct {
	BaseURL string
	Key     string
	Secret  string
	Client  *http.Client
}

var _ Service = &HTTPService{}

func NewHTTPService(baseURL, key, secret string) *HTTPService {
	return &HTTPService{
		BaseURL: baseURL,
		Key:     key,
		Secret:  secret,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type orderAPIResponse struct {
	Verified         bool   `json:"verified"`
	Challenge        string `json:"challenge"`
	NeedsOrderNumber bool   `json:"needs_order_number"`
	Message          string `json:"message"`
}

func (s *HTTPService) Lookup(ctx context.Context, orderNumber, queryText string) (*Result, error) {
	if orderNumber == "" {
		return &Result{NeedsOrderNumber: true}, nil
	}
	params := url.Values{}
	params.Set("order", orderNumber)
	params.Set("query", queryText)
	return s.call(ctx, "/support/orders/lookup?"+params.Encode())
}

func (s *HTTPService) VerifyChallenge(ctx context.Context, orderNumber, answer string) (*Result, error) {
	params := url.Values{}
	params.Set("order", orderNumber)
	params.Set("answer", answer)
	return s.call(ctx, "/support/orders/verify?"+params.Encode())
}

func (s *HTTPService) call(ctx context.Context, path string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(s.Key, s.Secret)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var api orderAPIResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &Result{
		Verified:         api.Verified,
		Challenge:        api.Challenge,
		NeedsOrderNumber: api.NeedsOrderNumber,
		Response:         api.Message,
	}, nil
}
