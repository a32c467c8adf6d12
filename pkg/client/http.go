package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP is a thin JSON client for the platform API.
type HTTP struct {
	RemoteURL string
	Token     string

	httpClient *http.Client
}

// NewHTTP creates a client against remoteURL authenticating with token.
func NewHTTP(remoteURL, token string) *HTTP {
	return &HTTP{
		RemoteURL: remoteURL,
		Token:     token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewFromContext creates a client from a platform context file.
func NewFromContext(contextPath string) (*HTTP, error) {
	mctx, err := ReadContext(contextPath)
	if err != nil {
		return nil, err
	}
	return NewHTTP(mctx.URL, mctx.Token), nil
}

// Request performs one HTTP call and returns the response body. Any status
// other than 200 is an error carrying the body.
func (h *HTTP) Request(ctx context.Context, method, path string, data []byte) ([]byte, error) {
	var reader *bytes.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequestWithContext(ctx, method, h.RemoteURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status code %v with body %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (h *HTTP) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := h.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (h *HTTP) postJSON(ctx context.Context, path string, in interface{}) ([]byte, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return h.Request(ctx, http.MethodPost, path, data)
}
