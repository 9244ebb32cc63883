package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
)

// CallDefinition is one configured alert type in the labor-dispatch system.
// The bridge only ever reads point-in-time snapshots of these; they are owned
// entirely upstream.
type CallDefinition struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ZoneDefinition is one physical location known to the labor-dispatch system.
type ZoneDefinition struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// CallRequest is the payload for creating a call upstream. IDZone is nil when
// the ordering location could not be resolved to a zone.
type CallRequest struct {
	IDCallConfig int    `json:"idCallConfig"`
	IDZone       *int   `json:"idZone"`
	Description  string `json:"description"`
}

// CreatedCall mirrors the call representation returned by the upstream API
// after a successful create.
type CreatedCall struct {
	ID           int    `json:"id"`
	IDCallConfig int    `json:"idCallConfig"`
	IDZone       *int   `json:"idZone"`
	Description  string `json:"description"`
}

// Client is the outbound boundary to the labor-dispatch API.
type Client interface {
	ListCallConfigs(ctx context.Context) ([]CallDefinition, error)
	ListZones(ctx context.Context) ([]ZoneDefinition, error)
	CreateCall(ctx context.Context, req CallRequest) (*CreatedCall, error)
}

// APIError reports a non-success answer from the labor-dispatch API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("labor-dispatch API returned status %d", e.Status)
	}
	return fmt.Sprintf("labor-dispatch API returned status %d: %s", e.Status, e.Body)
}

// HTTPClient implements Client against the hosted labor-dispatch REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     apt.Logger
}

// NewHTTPClient builds a client for the given API base, site and credentials.
// The credentials travel embedded in the base URL, matching the legacy
// integration contract.
func NewHTTPClient(apiURL, site, username, password string, logger apt.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	u.User = url.UserPassword(username, password)
	u.Path = strings.TrimRight(u.Path, "/") + "/" + site
	return &HTTPClient{
		baseURL: u.String(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			// The legacy bridge never follows upstream redirects; a 3xx
			// is kept as the final response and handled as a no-op.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// ListCallConfigs fetches the current call definitions. Every match attempt
// works on a fresh snapshot; the result is never cached.
func (c *HTTPClient) ListCallConfigs(ctx context.Context) ([]CallDefinition, error) {
	var configs []CallDefinition
	redirected, err := c.do(ctx, http.MethodGet, "/call-config", nil, &configs)
	if err != nil {
		return nil, err
	}
	if redirected {
		return nil, nil
	}
	return configs, nil
}

// ListZones fetches every zone known upstream.
func (c *HTTPClient) ListZones(ctx context.Context) ([]ZoneDefinition, error) {
	var zones []ZoneDefinition
	redirected, err := c.do(ctx, http.MethodGet, "/zone?all=true", nil, &zones)
	if err != nil {
		return nil, err
	}
	if redirected {
		return nil, nil
	}
	return zones, nil
}

// CreateCall posts one call-creation request. A single attempt, no retries;
// a redirected response returns (nil, nil).
func (c *HTTPClient) CreateCall(ctx context.Context, req CallRequest) (*CreatedCall, error) {
	var created CreatedCall
	redirected, err := c.do(ctx, http.MethodPost, "/call", req, &created)
	if err != nil {
		return nil, err
	}
	if redirected {
		return nil, nil
	}
	return &created, nil
}

// do performs one request against the API. It reports redirected=true for
// the 301/302/307 answers the legacy bridge silently ignored.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) (redirected bool, err error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("cannot marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("cannot build %s %s request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("labor-dispatch request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("cannot read labor-dispatch response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return false, fmt.Errorf("cannot decode labor-dispatch response: %w", err)
			}
		}
		return false, nil
	case resp.StatusCode == http.StatusMovedPermanently,
		resp.StatusCode == http.StatusFound,
		resp.StatusCode == http.StatusTemporaryRedirect:
		// Known quirk kept from the legacy bridge: redirects are treated
		// as delivered and the request is dropped on the floor.
		c.logger.Info("upstream redirect ignored", "status", resp.StatusCode, "method", method, "path", path)
		return true, nil
	default:
		return false, &APIError{Status: resp.StatusCode, Body: excerpt(raw)}
	}
}

// MaxResponseBytes caps how much of an upstream response the bridge reads.
const MaxResponseBytes = 1 << 20

func excerpt(raw []byte) string {
	const max = 512
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max]
	}
	return s
}
