package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"dealerbridge_backend/platform/config"

	"golang.org/x/time/rate"
)

// Client talks to one tenant's CRM account, authenticated with that tenant's
// private token. Calls are rate limited per client; there are no retries, so
// a timed-out write may have been applied server-side (at-most-once is not
// guaranteed).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client bound to the given credential.
func NewClient(cfg config.CRMConfig, token string) *Client {
	rps := cfg.GetCRMRequestsPerSecond()
	if rps <= 0 {
		rps = 8
	}
	return &Client{
		baseURL:    cfg.GetCRMBaseURL(),
		token:      token,
		httpClient: &http.Client{Timeout: cfg.GetCRMTimeout()},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)),
	}
}

// Factory hands out one Client per credential, so rate limiters are shared
// across every caller using the same tenant token.
type Factory struct {
	cfg     config.CRMConfig
	mu      sync.Mutex
	clients map[string]*Client
}

// NewFactory creates a client factory.
func NewFactory(cfg config.CRMConfig) *Factory {
	return &Factory{cfg: cfg, clients: make(map[string]*Client)}
}

// ForToken returns the client for the given credential, creating it on first use.
func (f *Factory) ForToken(token string) *Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if client, ok := f.clients[token]; ok {
		return client
	}
	client := NewClient(f.cfg, token)
	f.clients[token] = client
	return client
}

// ---- Properties ----

// GetProperty fetches a property definition. A 404 surfaces as apperr.KindNotFound.
func (c *Client) GetProperty(ctx context.Context, objectType, name string) (*Property, error) {
	var prop Property
	path := fmt.Sprintf("/crm/v3/properties/%s/%s", url.PathEscape(objectType), url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &prop, "get property"); err != nil {
		return nil, err
	}
	return &prop, nil
}

// CreateProperty defines a new property on the object schema.
func (c *Client) CreateProperty(ctx context.Context, objectType string, input PropertyCreate) (*Property, error) {
	var prop Property
	path := fmt.Sprintf("/crm/v3/properties/%s", url.PathEscape(objectType))
	if err := c.do(ctx, http.MethodPost, path, input, &prop, "create property"); err != nil {
		return nil, err
	}
	return &prop, nil
}

// UpdatePropertyOptions replaces the full option list of an enumerated property.
func (c *Client) UpdatePropertyOptions(ctx context.Context, objectType, name string, options []Option) (*Property, error) {
	var prop Property
	path := fmt.Sprintf("/crm/v3/properties/%s/%s", url.PathEscape(objectType), url.PathEscape(name))
	body := map[string]interface{}{"options": options}
	if err := c.do(ctx, http.MethodPatch, path, body, &prop, "update property options"); err != nil {
		return nil, err
	}
	return &prop, nil
}

// ---- Pipelines ----

type pipelinePage struct {
	Results []Pipeline `json:"results"`
}

// ListPipelines returns the pipelines defined for the object type.
func (c *Client) ListPipelines(ctx context.Context, objectType string) ([]Pipeline, error) {
	var page pipelinePage
	path := fmt.Sprintf("/crm/v3/pipelines/%s", url.PathEscape(objectType))
	if err := c.do(ctx, http.MethodGet, path, nil, &page, "list pipelines"); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ---- Objects ----

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Limit        int           `json:"limit"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchPage struct {
	Total   int      `json:"total"`
	Results []Object `json:"results"`
}

// SearchContactByEmail finds the contact with the given email.
// Returns (nil, nil) when no contact matches.
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Object, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: []filter{{
			PropertyName: "email",
			Operator:     "EQ",
			Value:        email,
		}}}},
		Limit: 1,
	}

	var page searchPage
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", req, &page, "search contact"); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, nil
	}
	return &page.Results[0], nil
}

// CreateObject creates a record of the given object type.
func (c *Client) CreateObject(ctx context.Context, objectType string, input CreateInput) (*Object, error) {
	var obj Object
	path := fmt.Sprintf("/crm/v3/objects/%s", url.PathEscape(objectType))
	if err := c.do(ctx, http.MethodPost, path, input, &obj, "create "+objectType); err != nil {
		return nil, err
	}
	return &obj, nil
}

// UpdateObject patches the properties of an existing record.
func (c *Client) UpdateObject(ctx context.Context, objectType, id string, properties map[string]string) (*Object, error) {
	var obj Object
	path := fmt.Sprintf("/crm/v3/objects/%s/%s", url.PathEscape(objectType), url.PathEscape(id))
	body := map[string]interface{}{"properties": properties}
	if err := c.do(ctx, http.MethodPatch, path, body, &obj, "update "+objectType); err != nil {
		return nil, err
	}
	return &obj, nil
}

// ---- Transport ----

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}
