package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mtanaka/pricewise/internal/apperr"
)

// TokenSource supplies the bearer token attached to every request. Token
// acquisition and refresh belong to the auth collaborator, not this client.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token. An empty token sends
// no Authorization header.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the receipt-analysis backend. The backend is the sole
// source of truth for receipts, profile and ranking; the client never retries
// on its own.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a backend client for baseURL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			// Analysis uploads wait on the vision model, which can be slow.
			Timeout: 120 * time.Second,
		},
	}
}

// Health probes the backend and its collaborators.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, "", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// MetaSearch looks up price-index classification rows by keyword.
func (c *Client) MetaSearch(ctx context.Context, keyword string) ([]MetaHit, error) {
	query := url.Values{"q": {keyword}}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/metaSearch", query, nil, "", &raw); err != nil {
		return nil, err
	}

	// The endpoint answers either a bare array or {"hits": [...]}.
	var hits []MetaHit
	if err := json.Unmarshal(raw, &hits); err == nil {
		return hits, nil
	}
	var wrapped struct {
		Hits []MetaHit `json:"hits"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &apperr.NetworkError{Op: "GET /metaSearch", Err: fmt.Errorf("unexpected response shape: %w", err)}
	}
	return wrapped.Hits, nil
}

// Ranking fetches the savings ranking, limited to the top limit rows.
func (c *Client) Ranking(ctx context.Context, limit int) (*RankingView, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var view RankingView
	if err := c.do(ctx, http.MethodGet, "/ranking", query, nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, "", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile changes the nickname; nil clears it.
func (c *Client) UpdateProfile(ctx context.Context, nickname *string) (*Profile, error) {
	body, err := json.Marshal(ProfileUpdate{Nickname: nickname})
	if err != nil {
		return nil, fmt.Errorf("marshaling profile update: %w", err)
	}
	var profile Profile
	if err := c.do(ctx, http.MethodPut, "/profile", nil, bytes.NewReader(body), "application/json", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// do runs one request/response round trip. Failures map onto the error
// taxonomy: dispatch and decode problems become NetworkError, non-2xx
// responses become RemoteError carrying the server's detail text verbatim.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	op := method + " " + path

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return &apperr.NetworkError{Op: op, Err: fmt.Errorf("acquiring token: %w", err)}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperr.RemoteError{Status: resp.StatusCode, Detail: errorDetail(data, resp.StatusCode)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &apperr.NetworkError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}

// errorDetail extracts the server's human-readable error text. The backend
// uses "detail"; some collaborators use "message".
func errorDetail(body []byte, status int) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return http.StatusText(status)
}
