package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ChunPingWang/ec-microservice-sub000/internal/config"
)

// Client talks to the external product catalog. The order core only asks it
// one question: is this product currently sellable.
type Client struct {
	httpClient *http.Client
	cfg        config.CatalogConfig
}

func NewClient(cfg config.CatalogConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

type availabilityResponse struct {
	ProductID string `json:"product_id"`
	Available bool   `json:"available"`
}

// IsProductAvailable asks the catalog whether the product can be sold. A 404
// from the catalog means the product does not exist, which is simply "not
// available" to the order flow.
func (c *Client) IsProductAvailable(ctx context.Context, productID string) (bool, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return false, fmt.Errorf("invalid catalog base url: %w", err)
	}

	u := *base
	u.Path = fmt.Sprintf("%s/products/%s/availability", base.Path, url.PathEscape(productID))
	if c.cfg.APIKey != "" {
		q := u.Query()
		q.Set("api_key", c.cfg.APIKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode catalog response: %w", err)
	}
	return body.Available, nil
}
