package billing

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

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/config"
)

// Client is an HTTP client for the billing-provider REST API.
//
// Error contract: a 404 from the provider maps to shared.ErrNotFound; every
// other failure (transport error, non-2xx status, malformed payload) maps to
// shared.ErrRemoteUnavailable. Callers distinguish the two with errors.Is
// and never see raw HTTP details.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	tokens       TokenProvider
	logger       *zap.Logger
}

// NewClient creates a billing-provider API client
func NewClient(cfg *config.BillingConfig, tokens TokenProvider, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		tokens:       tokens,
		logger:       logger.Named("billing"),
	}
}

// WithTokenProvider returns a copy of the client that authenticates with the
// given provider. Used to bind a request-scoped session token.
func (c *Client) WithTokenProvider(tokens TokenProvider) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// GetProject fetches a single project by its provider ID
func (c *Client) GetProject(ctx context.Context, remoteID string) (*RemoteProject, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeObject(body)
	if err != nil {
		return nil, c.unavailable("decode project response", err)
	}
	project, err := NormalizeProject(raw)
	if err != nil {
		return nil, c.unavailable("normalize project", err)
	}
	return project, nil
}

// ListProjects fetches all projects, optionally filtered to one client
func (c *Client) ListProjects(ctx context.Context, clientID string) ([]RemoteProject, error) {
	path := "/api/v1/projects"
	if clientID != "" {
		path += "?client_id=" + url.QueryEscape(clientID)
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(body, "projects")
	if err != nil {
		return nil, c.unavailable("decode project list", err)
	}

	projects := make([]RemoteProject, 0, len(items))
	for _, raw := range items {
		project, err := NormalizeProject(raw)
		if err != nil {
			// One malformed record must not hide the rest of the list
			c.logger.Warn("skipping malformed remote project", zap.Error(err))
			continue
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// CreateProject creates a project on the provider side
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*RemoteProject, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/projects", in)
	if err != nil {
		return nil, err
	}
	raw, err := decodeObject(body)
	if err != nil {
		return nil, c.unavailable("decode create response", err)
	}
	project, err := NormalizeProject(raw)
	if err != nil {
		return nil, c.unavailable("normalize created project", err)
	}
	return project, nil
}

// UpdateProject updates a project on the provider side and returns its
// post-update state.
func (c *Client) UpdateProject(ctx context.Context, remoteID string, in UpdateProjectInput) (*RemoteProject, error) {
	body, err := c.do(ctx, http.MethodPatch, "/api/v1/projects/"+url.PathEscape(remoteID), in)
	if err != nil {
		return nil, err
	}
	raw, err := decodeObject(body)
	if err != nil {
		return nil, c.unavailable("decode update response", err)
	}
	project, err := NormalizeProject(raw)
	if err != nil {
		return nil, c.unavailable("normalize updated project", err)
	}
	return project, nil
}

// GetClient fetches a single client record by its provider ID
func (c *Client) GetClient(ctx context.Context, remoteClientID string) (*RemoteClient, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/clients/"+url.PathEscape(remoteClientID), nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeObject(body)
	if err != nil {
		return nil, c.unavailable("decode client response", err)
	}
	client, err := NormalizeClient(raw)
	if err != nil {
		return nil, c.unavailable("normalize client", err)
	}
	return client, nil
}

// ListInvoices fetches the invoices for one provider project
func (c *Client) ListInvoices(ctx context.Context, remoteProjectID string) ([]RemoteInvoice, error) {
	path := "/api/v1/invoices?project_id=" + url.QueryEscape(remoteProjectID)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(body, "invoices")
	if err != nil {
		return nil, c.unavailable("decode invoice list", err)
	}

	invoices := make([]RemoteInvoice, 0, len(items))
	for _, raw := range items {
		invoice, err := NormalizeInvoice(raw)
		if err != nil {
			c.logger.Warn("skipping malformed remote invoice", zap.Error(err))
			continue
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, nil
}

// do executes one authenticated request and returns the response body.
// Token resolution errors pass through unchanged so ErrNoToken stays
// detectable with errors.Is.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("billing: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("billing request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, c.unavailable("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, c.unavailable("read response", err)
	}

	c.logger.Debug("billing request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, shared.ErrNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	default:
		c.logger.Warn("billing request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, c.unavailable(fmt.Sprintf("provider returned %d", resp.StatusCode), nil)
	}
}

// unavailable wraps a failure so errors.Is(err, shared.ErrRemoteUnavailable)
// holds, preserving the underlying detail for logs.
func (c *Client) unavailable(msg string, cause error) error {
	if cause != nil {
		return fmt.Errorf("billing: %s: %v: %w", msg, cause, shared.ErrRemoteUnavailable)
	}
	return fmt.Errorf("billing: %s: %w", msg, shared.ErrRemoteUnavailable)
}

// decodeObject decodes a response body that is either a bare object or an
// envelope with the object under "data".
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if data, ok := raw["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			return inner, nil
		}
	}
	return raw, nil
}

// decodeList decodes a response body that is a bare array, or an envelope
// with the array under "data" or a named key.
func decodeList(body []byte, key string) ([]map[string]json.RawMessage, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	for _, k := range []string{"data", key, "items", "results"} {
		if data, ok := envelope[k]; ok {
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		}
	}
	return nil, fmt.Errorf("response is not a list")
}
