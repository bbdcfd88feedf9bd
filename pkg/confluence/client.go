// Package confluence implements the page-hierarchy resolution and
// mutation engine behind the Conflagent REST façade. All operations are
// scoped to descendants of a single configured root page and round-trip
// to the live wiki on every call; there is no local cache of page state.
package confluence

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// childPageLimit is the page size used when walking child listings.
const childPageLimit = 100

// Config contains the per-endpoint settings needed to talk to one
// Confluence space.
type Config struct {
	// BaseURL is the site base URL, e.g. "https://example.atlassian.net/wiki".
	BaseURL string

	// SpaceKey is the Confluence space the root page lives in.
	SpaceKey string

	// RootPageID is the page defining the sandboxed subtree boundary.
	RootPageID string

	// Email and APIToken form the Basic auth credential pair.
	Email    string
	APIToken string

	// Timeout for remote requests. Defaults to 30 seconds.
	Timeout time.Duration
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", u.Scheme)
	}
	if c.SpaceKey == "" {
		return fmt.Errorf("space_key is required")
	}
	if c.RootPageID == "" {
		return fmt.Errorf("root_page_id is required")
	}
	if c.Email == "" {
		return fmt.Errorf("email is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("api_token is required")
	}
	return nil
}

// Client is a thin wrapper around the Confluence Content REST API,
// restricted to the subtree below the configured root page.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a client for one configured endpoint.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid confluence config: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

// RootPageID returns the configured root page id.
func (c *Client) RootPageID() string {
	return c.cfg.RootPageID
}

// SpaceKey returns the configured space key.
func (c *Client) SpaceKey() string {
	return c.cfg.SpaceKey
}

// contentURL builds an absolute content API URL from a relative path
// like "/content/{id}/child/page".
func (c *Client) contentURL(path string) string {
	return fmt.Sprintf("%s/rest/api%s", c.cfg.BaseURL, path)
}

func (c *Client) basicAuth() string {
	cred := fmt.Sprintf("%s:%s", c.cfg.Email, c.cfg.APIToken)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(cred))
}

// do executes one authenticated request against the remote API. Any
// non-2xx status is returned as a *RemoteError carrying the remote
// status code and body text verbatim. There are no retries: a failure
// here is fatal to the current operation.
func (c *Client) do(ctx context.Context, method, rawURL string, params url.Values, body, result interface{}) error {
	endpoint := rawURL
	if len(params) > 0 {
		endpoint = fmt.Sprintf("%s?%s", rawURL, params.Encode())
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.basicAuth())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// getPage fetches a single page by id with the given expansions.
func (c *Client) getPage(ctx context.Context, pageID, expand string) (*Page, error) {
	params := url.Values{}
	if expand != "" {
		params.Set("expand", expand)
	}
	var page Page
	if err := c.do(ctx, http.MethodGet, c.contentURL("/content/"+pageID), params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// fetchChildren lists the direct child pages of pageID, following the
// remote pagination cursor until the listing is exhausted. Results keep
// the API's ordering.
func (c *Client) fetchChildren(ctx context.Context, pageID string) ([]Page, error) {
	var children []Page
	start := 0
	for {
		params := url.Values{}
		params.Set("start", strconv.Itoa(start))
		params.Set("limit", strconv.Itoa(childPageLimit))

		var list contentList
		err := c.do(ctx, http.MethodGet,
			c.contentURL("/content/"+pageID+"/child/page"), params, nil, &list)
		if err != nil {
			return nil, err
		}

		children = append(children, list.Results...)
		if len(list.Results) < childPageLimit {
			return children, nil
		}
		start += len(list.Results)
	}
}

// GetPageBody fetches the storage-format body of a page.
func (c *Client) GetPageBody(ctx context.Context, pageID string) (string, error) {
	page, err := c.getPage(ctx, pageID, "body.storage")
	if err != nil {
		return "", err
	}
	if page.Body == nil {
		return "", nil
	}
	return page.Body.Storage.Value, nil
}
