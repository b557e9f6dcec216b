package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
	"github.com/ASP-NET-2/ReviewProvider/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client checks product existence against the catalog service. Feedback is
// only accepted for products the catalog knows about.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a catalog client.
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// EnsureProductExists returns nil when the catalog knows the product,
// apperrors.ErrNotFound when it does not, and a service unavailable error
// when the catalog cannot be reached.
func (c *Client) EnsureProductExists(ctx context.Context, productID string) error {
	url := c.baseURL + "/api/v1/products/" + productID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog lookup failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return apperrors.ServiceUnavailable("catalog", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NotFound("product", productID)
	default:
		return httpclient.ParseResponseError(resp, "catalog")
	}
}
