package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) do(ctx context.Context, method, path string, body any) (dispatch.Snapshot, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return dispatch.Snapshot{}, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return dispatch.Snapshot{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dispatch.Snapshot{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return dispatch.Snapshot{}, fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}

	var snap dispatch.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return dispatch.Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return snap, nil
}

func (c *client) setOpen(ctx context.Context, open bool) (dispatch.Snapshot, error) {
	return c.do(ctx, http.MethodPost, "/api/gate", map[string]bool{"open": open})
}

func (c *client) submit(ctx context.Context, name string) (dispatch.Snapshot, error) {
	return c.do(ctx, http.MethodPut, "/api/identity", map[string]string{"userName": name})
}

func (c *client) wsURL() string {
	switch {
	case strings.HasPrefix(c.base, "https://"):
		return "wss://" + strings.TrimPrefix(c.base, "https://") + "/api/ws"
	case strings.HasPrefix(c.base, "http://"):
		return "ws://" + strings.TrimPrefix(c.base, "http://") + "/api/ws"
	default:
		return "ws://" + c.base + "/api/ws"
	}
}
