// Remote backend, part 1: a narrow HTTP client for the managed service.
//
// The service exposes a table-oriented REST surface — per-collection
// select/insert/update/delete with equality filters — plus an auth surface
// that owns password verification and issues its own user IDs. This client
// covers exactly the handful of calls the adapter needs and nothing more;
// the rest of the service's API is none of our business.
//
// Two keys, two roles: the anon (public) key authenticates the auth-plane
// calls where the end user is proving who they are; the privileged service
// key authenticates data-plane reads and writes performed on the server's
// own authority.
//
// NOTE ON TIMEOUTS: the default http.Client has none, deliberately. No
// timeout or retry policy is defined for the external round-trip — a hang
// in the service hangs the request, and failures surface immediately.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type remoteClient struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

// newRemoteClient validates the endpoint and verifies the service is
// reachable. Any failure here bubbles up to the mode selector, which falls
// back to the embedded backend.
func newRemoteClient(rawURL, anonKey, serviceKey string) (*remoteClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parsing endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: endpoint URL must be http(s), got %q", rawURL)
	}

	c := &remoteClient{
		baseURL:    strings.TrimRight(rawURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{},
	}

	// Reachability probe. Any HTTP response counts as reachable — only a
	// transport-level failure (DNS, refused connection) fails construction.
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return nil, fmt.Errorf("remote: building probe request: %w", err)
	}
	req.Header.Set("apikey", anonKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: service unreachable: %w", err)
	}
	resp.Body.Close()

	return c, nil
}

// restError is the service's error envelope.
type restError struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
}

func (e restError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error
	}
}

// do runs one request against the data plane and decodes the row array the
// service returns. missingOK controls the 404 rule: a missing collection is
// an empty result, not an error.
func (c *remoteClient) do(ctx context.Context, method, path string, query url.Values, body any, missingOK bool) ([]json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("remote: building request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	// Ask the service to echo affected rows back, so writes can return the
	// stored record without a second round-trip.
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && missingOK {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var re restError
		_ = json.Unmarshal(data, &re)
		return nil, fmt.Errorf("remote: %s %s: status %d: %s", method, path, resp.StatusCode, re.text())
	}

	if len(data) == 0 {
		return nil, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		// Single-object responses come back without the array wrapper.
		var row json.RawMessage
		if err2 := json.Unmarshal(data, &row); err2 != nil {
			return nil, fmt.Errorf("remote: decoding response: %w", err)
		}
		rows = []json.RawMessage{row}
	}
	return rows, nil
}

// eq builds the equality filter query the data plane understands.
func eq(filters map[string]string) url.Values {
	q := url.Values{}
	for col, val := range filters {
		q.Set(col, "eq."+val)
	}
	return q
}

func (c *remoteClient) selectRows(ctx context.Context, collection string, filters map[string]string) ([]json.RawMessage, error) {
	q := eq(filters)
	q.Set("select", "*")
	return c.do(ctx, http.MethodGet, "/rest/v1/"+collection, q, nil, true)
}

func (c *remoteClient) insertRow(ctx context.Context, collection string, row any) (json.RawMessage, error) {
	rows, err := c.do(ctx, http.MethodPost, "/rest/v1/"+collection, nil, row, false)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("remote: insert into %s returned no rows", collection)
	}
	return rows[0], nil
}

func (c *remoteClient) updateRows(ctx context.Context, collection string, filters map[string]string, changes any) ([]json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/rest/v1/"+collection, eq(filters), changes, false)
}

func (c *remoteClient) deleteRows(ctx context.Context, collection string, filters map[string]string) ([]json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, "/rest/v1/"+collection, eq(filters), nil, false)
}

// authResponse is the subset of the auth plane's response we care about:
// the identity the service issued or verified.
type authResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	// Some deployments return the user at the top level on signup.
	ID string `json:"id"`
}

func (r authResponse) userID() string {
	if r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

// authPost runs one auth-plane call with the anon key. ok=false means the
// service rejected the credentials (as opposed to a transport failure).
func (c *remoteClient) authPost(ctx context.Context, path string, body any) (userID string, ok bool, err error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", false, fmt.Errorf("remote: encoding auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return "", false, fmt.Errorf("remote: building auth request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("remote: auth call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("remote: reading auth response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity {
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var re restError
		_ = json.Unmarshal(data, &re)
		return "", false, fmt.Errorf("remote: auth call %s: status %d: %s", path, resp.StatusCode, re.text())
	}

	var ar authResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		return "", false, fmt.Errorf("remote: decoding auth response: %w", err)
	}
	if ar.userID() == "" {
		return "", false, nil
	}
	return ar.userID(), true, nil
}

// signUp registers a new identity with the service's auth plane. The
// service hashes and stores the password itself and issues the user ID.
func (c *remoteClient) signUp(ctx context.Context, email, password string) (string, bool, error) {
	return c.authPost(ctx, "/auth/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	})
}

// signIn verifies credentials with the service's auth plane. The stored
// hash never leaves the service; all we learn is whether the pair matched,
// and for whom.
func (c *remoteClient) signIn(ctx context.Context, email, password string) (string, bool, error) {
	return c.authPost(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
}
