// Package yahoo is a client for the Yahoo Finance chart and quoteSummary APIs.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/pkg/httputil"
	"github.com/wonny/stockpick/pkg/logger"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// ErrNotFound is returned for unknown symbols
var ErrNotFound = errors.New("symbol not found")

// APIError is an error reported inside a Yahoo response envelope
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (%s)", e.Code, e.Description)
}

// Is maps "Not Found" envelopes onto ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && strings.EqualFold(e.Code, "Not Found")
}

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	baseURL      string
	historyRange string
}

var _ contracts.MarketData = (*Client)(nil)

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:   httpClient,
		logger:       log.WithField("module", "yahoo"),
		baseURL:      strings.TrimRight(baseURL, "/"),
		historyRange: "ytd",
	}
}

// get fetches a JSON document and converts transport failures into provider faults
func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fullURL + "?" + params.Encode()
	}

	err := c.httpClient.GetJSON(ctx, fullURL, dest)
	if err == nil {
		return nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		case httputil.IsThrottled(statusErr.StatusCode):
			return fmt.Errorf("%s: throttled by upstream: %w", path, err)
		}
	}
	return fmt.Errorf("%s: %w", path, err)
}
