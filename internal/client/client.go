// Package client talks to the catalog and auth REST endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/httpclient"
)

// HTTPDoer executes a single HTTP request. httpclient.Client satisfies it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// base holds what every endpoint client shares.
type base struct {
	http    HTTPDoer
	baseURL string
	token   TokenSource
}

func newBase(doer HTTPDoer, baseURL string, token TokenSource) base {
	return base{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// call sends one request and decodes a 2xx JSON body into out. Non-2xx
// responses come back as *httpclient.NetworkError.
func (b base) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != nil {
		if tok := b.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := b.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return httpclient.ParseResponseError(resp, method, path)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// listOf accepts either a bare JSON array or an {"items": [...]} envelope.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var env struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*l = env.Items
	return nil
}
