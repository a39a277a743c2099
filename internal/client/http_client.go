package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/poofware/application-service/internal/dtos"
	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/routes"
	"github.com/poofware/application-service/internal/utils"
)

// ApplicationAPI is the set of calls the form makes against the service.
type ApplicationAPI interface {
	CreateApplication(ctx context.Context, data models.Document) (resumeURL string, err error)
	GetApplication(ctx context.Context, id string) (models.Document, error)
	UpdateApplication(ctx context.Context, id string, data models.Document) error
	ValidateApplication(ctx context.Context, id string, data models.Document) (quote int, err error)
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Errors  []string // failing field names, set on validation failures
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Errors)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// HTTPClient implements ApplicationAPI over the service's JSON routes.
type HTTPClient struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

// NewHTTPClient targets the service at baseURL, e.g. http://localhost:8080.
// A nil hc gets a client with a 30s timeout.
func NewHTTPClient(baseURL string, hc *http.Client) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid baseURL %q: scheme and host required", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{BaseURL: parsed, HTTPClient: hc}, nil
}

func (c *HTTPClient) CreateApplication(ctx context.Context, data models.Document) (string, error) {
	if data == nil {
		data = models.Document{}
	}
	var resp dtos.CreateApplicationResponse
	if err := c.do(ctx, http.MethodPost, routes.Applications, nil, data, &resp); err != nil {
		return "", err
	}
	return resp.ResumeURL, nil
}

func (c *HTTPClient) GetApplication(ctx context.Context, id string) (models.Document, error) {
	q := url.Values{}
	q.Set(routes.ApplicationIDParam, id)

	var doc models.Document
	if err := c.do(ctx, http.MethodGet, routes.Applications, q, nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *HTTPClient) UpdateApplication(ctx context.Context, id string, data models.Document) error {
	req := dtos.UpdateApplicationRequest{ID: id, Data: data}
	return c.do(ctx, http.MethodPut, routes.Applications, nil, req, nil)
}

func (c *HTTPClient) ValidateApplication(ctx context.Context, id string, data models.Document) (int, error) {
	req := dtos.ValidateApplicationRequest{ID: id, Data: data}
	var resp dtos.ValidateApplicationResponse
	if err := c.do(ctx, http.MethodPost, routes.ApplicationsValidate, nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.Quote, nil
}

// do performs one request. No retries: a failed call surfaces immediately.
func (c *HTTPClient) do(ctx context.Context, method, reqPath string, query url.Values, body, out any) error {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, reqPath)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, reqPath, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody utils.ErrorResponse
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
			apiErr.Errors = errBody.Errors
		}
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
