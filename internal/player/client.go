package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UnavailableError means the remote device rejected a command or is missing.
// It is a non-fatal warning: the countdown and scoring flow continue.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "player: playback unavailable: " + e.Reason
}

// Client issues play/pause commands against the provider's player endpoints
// for a negotiated device id.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.spotify.com/v1"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) put(ctx context.Context, token, endpoint string, body any) error {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UnavailableError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &UnavailableError{Reason: fmt.Sprintf("device command status %d", resp.StatusCode)}
	}
	return nil
}

// Play starts playback of a track on the device, from the beginning.
func (c *Client) Play(ctx context.Context, token, deviceID, trackURI string) error {
	if token == "" || deviceID == "" {
		return &UnavailableError{Reason: "missing credential or device"}
	}
	endpoint := "/me/player/play?device_id=" + url.QueryEscape(deviceID)
	return c.put(ctx, token, endpoint, map[string]any{
		"uris":        []string{trackURI},
		"position_ms": 0,
	})
}

// Pause stops playback on the account's active device.
func (c *Client) Pause(ctx context.Context, token string) error {
	if token == "" {
		return &UnavailableError{Reason: "missing credential"}
	}
	return c.put(ctx, token, "/me/player/pause", nil)
}
