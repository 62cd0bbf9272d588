// Package client is the Go client for the fleet location API: a thin HTTP
// wrapper plus the two loops the mobile apps run, the driver-side reporter
// and the viewer-side poller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wasteline/fleet_backendl/internal/models"
)

// DefaultTimeout bounds every call; a hung request is treated as a transient
// failure, never as a sharing-state change.
const DefaultTimeout = 5 * time.Second

// APIError carries the server's error envelope. Status 5xx responses are
// safe to retry on the next tick.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. token may be empty for viewer-only use.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// ShareLocation reports the caller's position. The server derives the driver
// id from the token.
func (c *Client) ShareLocation(ctx context.Context, lat, lon float64, sharing bool) (*models.ShareResponse, error) {
	body := models.ShareRequest{Latitude: &lat, Longitude: &lon, Sharing: &sharing}
	var resp models.ShareResponse
	if err := c.do(ctx, http.MethodPost, "/api/location/share", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DriverLocation(ctx context.Context, driverID string) (*models.DriverLocationResponse, error) {
	var resp models.DriverLocationResponse
	if err := c.do(ctx, http.MethodGet, "/api/location/"+driverID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LatestShared(ctx context.Context) (*models.LatestSharedResponse, error) {
	var resp models.LatestSharedResponse
	if err := c.do(ctx, http.MethodGet, "/api/location/latest", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AllShared(ctx context.Context) (*models.FleetResponse, error) {
	var resp models.FleetResponse
	if err := c.do(ctx, http.MethodGet, "/api/location/shared", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
