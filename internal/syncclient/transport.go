package syncclient

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
)

// Transport moves whole snapshots between the client and the sync server.
type Transport interface {
	Push(ctx context.Context, username string, state []byte) error

	Fetch(ctx context.Context, username string) ([]byte, error)
}

type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type pushBody struct {
	Username string          `json:"username"`
	State    json.RawMessage `json:"state"`
}

func (t *HTTPTransport) Push(ctx context.Context, username string, state []byte) error {
	body, err := json.Marshal(pushBody{Username: username, State: state})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sync", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sync rejected: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (t *HTTPTransport) Fetch(ctx context.Context, username string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/state/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch state: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
