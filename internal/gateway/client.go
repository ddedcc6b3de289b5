package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// TokenSource supplies the current bearer token. Empty string means "no
// session yet" and the Authorization header is simply omitted.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client is the single shared HTTP client for the detection backend. One base
// URL, one side effect: a bearer token from the session store on every
// request. No response interceptor; 401s and expired tokens propagate to the
// caller unchanged. No retry.
type Client struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:    baseURL,
		Tokens:     tokens,
		HTTPClient: &http.Client{},
	}
}

// APIError carries the backend status plus a best-effort "detail" message
// extracted from the body, for surfacing in user-facing notifications.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error: status=%d detail=%s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error: status=%d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.Tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Detail: extractDetail(data)}
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// doRaw issues a GET and hands back the raw body, for the list endpoints
// whose envelope varies.
func (c *Client) doRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token := c.Tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Detail: extractDetail(data)}
	}
	return data, nil
}

func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return ""
}

// Login authenticates against the backend. Issued before any token exists,
// so the Authorization header is naturally absent.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LiveStats fetches the single-camera stats snapshot.
func (c *Client) LiveStats(ctx context.Context) (*LiveStats, error) {
	var stats LiveStats
	if err := c.do(ctx, http.MethodGet, "/live/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LiveFrame fetches the latest single-camera frame. Empty string means no
// frame was available this tick.
func (c *Client) LiveFrame(ctx context.Context) (string, error) {
	var resp frameResponse
	if err := c.do(ctx, http.MethodGet, "/live/frame", nil, &resp); err != nil {
		return "", err
	}
	return resp.Frame, nil
}

// LiveControl starts or stops single-camera detection.
func (c *Client) LiveControl(ctx context.Context, active bool) error {
	return c.do(ctx, http.MethodPost, "/live/control", map[string]bool{"active": active}, nil)
}

// PushSettings posts the merged settings object.
func (c *Client) PushSettings(ctx context.Context, payload SettingsPayload) error {
	return c.do(ctx, http.MethodPost, "/live/settings", payload, nil)
}

// DualStats fetches both cameras' snapshots in one call.
func (c *Client) DualStats(ctx context.Context) (*DualStats, error) {
	var stats DualStats
	if err := c.do(ctx, http.MethodGet, "/live/dual/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DualFrame fetches the latest frame for camera 1 or 2.
func (c *Client) DualFrame(ctx context.Context, camera int) (string, error) {
	var resp frameResponse
	if err := c.do(ctx, http.MethodGet, "/live/dual/frame/"+strconv.Itoa(camera), nil, &resp); err != nil {
		return "", err
	}
	return resp.Frame, nil
}

// DualControl starts or stops one camera.
func (c *Client) DualControl(ctx context.Context, camera int, active bool) error {
	path := "/live/dual/control/" + strconv.Itoa(camera)
	return c.do(ctx, http.MethodPost, path, map[string]bool{"active": active}, nil)
}

// RecentAlerts fetches recent alerts. limit <= 0 omits the query parameter
// (the Alerts page fetches the unbounded list).
func (c *Client) RecentAlerts(ctx context.Context, limit int) ([]Alert, error) {
	path := "/alerts/recent"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	data, err := c.doRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	raw, err := decodeAlertEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	alerts := make([]Alert, 0, len(raw))
	for _, r := range raw {
		alerts = append(alerts, r.toAlert())
	}
	return alerts, nil
}

// VerifiedAlerts fetches the verified alert list.
func (c *Client) VerifiedAlerts(ctx context.Context) ([]VerifiedAlert, error) {
	data, err := c.doRaw(ctx, "/alerts/verified")
	if err != nil {
		return nil, err
	}
	list, err := decodeVerifiedEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("decode verified alerts: %w", err)
	}
	return list, nil
}

// VerifyAlert marks an alert valid (1) or rejected (0) on the server. The
// local alert list is never touched here; the next poll reflects truth.
func (c *Client) VerifyAlert(ctx context.Context, alertID, verifiedBy string, isValid int) error {
	body := map[string]interface{}{
		"verified_by": verifiedBy,
		"is_valid":    isValid,
	}
	return c.do(ctx, http.MethodPost, "/alerts/"+alertID+"/verify", body, nil)
}
