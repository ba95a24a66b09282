// Package hub implements the build service and helper environment ports over HTTP.
package hub

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

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

const httpClientTimeout = 60 * time.Second

var (
	_ ports.BuildService       = (*Client)(nil)
	_ ports.EnvironmentService = (*Client)(nil)
)

// Client talks JSON to the build service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client for the service at baseURL. Every request carries
// token as a bearer credential when it is not empty.
func New(baseURL, token string) *Client {
	return NewWithClient(baseURL, token, &http.Client{Timeout: httpClientTimeout})
}

// NewWithClient creates a Client using the given http client.
func NewWithClient(baseURL, token string, client *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: client,
	}
}

type idResponse struct {
	ID string `json:"id"`
}

type recordsResponse[T any] struct {
	Records []T `json:"records"`
}

type errorsResponse struct {
	Messages []string `json:"messages"`
}

type errorBody struct {
	Message string `json:"message"`
}

type resolveRequest struct {
	Dependencies []namespacedDTO `json:"dependencies"`
}

type namespacedDTO struct {
	Namespace string `json:"namespace"`
	Version   string `json:"version"`
}

type resolveResponse struct {
	VersionIDs []string `json:"version_ids"`
}

type createEnvironmentRequest struct {
	Name string `json:"name"`
}

// FindPackages returns the non-deprecated packages matching the identity.
func (c *Client) FindPackages(ctx context.Context, id domain.PackageIdentity) ([]domain.PackageRecord, error) {
	q := url.Values{}
	q.Set("name", id.Name)
	q.Set("type", string(id.Type))
	q.Set("namespace", id.Namespace)
	q.Set("deprecated", "false")

	var resp recordsResponse[domain.PackageRecord]
	if err := c.do(ctx, http.MethodGet, "/packages?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.PackageRecord, 0, len(resp.Records))
	for _, r := range resp.Records {
		if r.Matches(id) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// CreatePackage creates a package record.
func (c *Client) CreatePackage(ctx context.Context, spec domain.PackageSpec) (string, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, "/packages", spec, &resp); err != nil {
		return "", err
	}
	return c.requireID(resp, "/packages")
}

// CreateBuildRequest queues a build.
func (c *Client) CreateBuildRequest(ctx context.Context, spec domain.BuildRequestSpec) (string, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, "/build-requests", spec, &resp); err != nil {
		return "", err
	}
	return c.requireID(resp, "/build-requests")
}

// FindActiveRequests returns the package's requests with the tag that did not fail.
func (c *Client) FindActiveRequests(ctx context.Context, packageID, tag string) ([]domain.BuildRequest, error) {
	q := url.Values{}
	q.Set("package_id", packageID)
	q.Set("tag", tag)
	q.Set("exclude_status", string(domain.StatusError))

	var resp recordsResponse[domain.BuildRequest]
	if err := c.do(ctx, http.MethodGet, "/build-requests?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	active := make([]domain.BuildRequest, 0, len(resp.Records))
	for _, r := range resp.Records {
		if r.Status != domain.StatusError {
			active = append(active, r)
		}
	}
	return active, nil
}

// GetBuildRequest returns the current state of a request.
func (c *Client) GetBuildRequest(ctx context.Context, requestID string) (domain.BuildRequest, error) {
	var req domain.BuildRequest
	err := c.do(ctx, http.MethodGet, "/build-requests/"+url.PathEscape(requestID), nil, &req)
	return req, err
}

// GetBuildRequestErrors returns the error messages recorded for a request.
func (c *Client) GetBuildRequestErrors(ctx context.Context, requestID string) ([]string, error) {
	var resp errorsResponse
	if err := c.do(ctx, http.MethodGet, "/build-requests/"+url.PathEscape(requestID)+"/errors", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// LatestVersion returns the highest version of the package, or nil when it has none.
func (c *Client) LatestVersion(ctx context.Context, packageID string) (*domain.VersionRecord, error) {
	var v domain.VersionRecord
	err := c.do(ctx, http.MethodGet, "/packages/"+url.PathEscape(packageID)+"/versions/latest", nil, &v)
	if err != nil {
		if errors.Is(err, domain.ErrHubNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// GetVersion returns a version by id.
func (c *Client) GetVersion(ctx context.Context, versionID string) (domain.VersionRecord, error) {
	var v domain.VersionRecord
	err := c.do(ctx, http.MethodGet, "/versions/"+url.PathEscape(versionID), nil, &v)
	return v, err
}

// CreateEnvironment provisions a helper environment.
func (c *Client) CreateEnvironment(ctx context.Context, name string) (domain.EnvironmentRecord, error) {
	var env domain.EnvironmentRecord
	err := c.do(ctx, http.MethodPost, "/environments", createEnvironmentRequest{Name: name}, &env)
	return env, err
}

// ResolveNamespaced maps namespaced dependencies to the version ids installed in the environment.
func (c *Client) ResolveNamespaced(ctx context.Context, envID string, deps []domain.NamespacedDependency) ([]string, error) {
	body := resolveRequest{Dependencies: make([]namespacedDTO, len(deps))}
	for i, d := range deps {
		body.Dependencies[i] = namespacedDTO{Namespace: d.Namespace, Version: d.Version}
	}

	var resp resolveResponse
	path := "/environments/" + url.PathEscape(envID) + "/resolve"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNamespaceResolutionFailed, err.Error()), "environment_id", envID)
	}
	if len(resp.VersionIDs) != len(deps) {
		err := zerr.With(zerr.Wrap(domain.ErrNamespaceResolutionFailed, "unexpected number of version ids"), "expected", len(deps))
		return nil, zerr.With(err, "got", len(resp.VersionIDs))
	}
	return resp.VersionIDs, nil
}

func (c *Client) requireID(resp idResponse, path string) (string, error) {
	if resp.ID == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrHubResponseInvalid, "missing id"), "path", path)
	}
	return resp.ID, nil
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrHubRequestFailed, err.Error()), "path", path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrHubRequestFailed, err.Error()), "path", path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrHubRequestFailed, err.Error()), "path", path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrHubRequestFailed, err.Error()), "path", path)
	}

	if resp.StatusCode == http.StatusNotFound {
		return zerr.With(zerr.Wrap(domain.ErrHubNotFound, method+" "+path), "status_code", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := zerr.With(zerr.Wrap(domain.ErrHubRequestFailed, describe(resp.StatusCode, data)), "status_code", resp.StatusCode)
		return zerr.With(apiErr, "path", path)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrHubResponseInvalid, err.Error()), "path", path)
	}
	return nil
}

func describe(status int, body []byte) string {
	var e errorBody
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", status)
}
