package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Doer is the network primitive. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultTimeout bounds requests made through the default client.
const DefaultTimeout = 10 * time.Second

func defaultDoer() Doer {
	return &http.Client{Timeout: DefaultTimeout}
}

// Fetch performs a single request for id and decodes a 2xx JSON body into
// T. An empty 2xx body yields the zero value of T.
func Fetch[T any](ctx context.Context, doer Doer, id Identity, body any) (T, error) {
	data, _, err := fetch[T](ctx, doer, id, body)
	return data, err
}

// fetch is Fetch that also reports whether a body was decoded.
func fetch[T any](ctx context.Context, doer Doer, id Identity, body any) (T, bool, error) {
	var data T

	req, err := newHTTPRequest(ctx, id, body)
	if err != nil {
		return data, false, err
	}

	resp, err := doer.Do(req)
	if err != nil {
		return data, false, &NetworkError{Method: req.Method, Endpoint: id.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return data, false, &NetworkError{Method: req.Method, Endpoint: id.Endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, false, &HTTPError{StatusCode: resp.StatusCode, Message: messageFrom(raw)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return data, false, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, false, &DecodeError{Err: err}
	}
	return data, true, nil
}

func newHTTPRequest(ctx context.Context, id Identity, body any) (*http.Request, error) {
	var (
		reader  io.Reader
		encoded bool
	)
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = strings.NewReader(b)
	default:
		jsonData, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
		encoded = true
	}

	req, err := http.NewRequestWithContext(ctx, id.Shape.method(), id.Endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range id.Shape.Headers {
		req.Header.Set(name, value)
	}
	if encoded && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// messageFrom extracts the message field of an error body.
func messageFrom(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || strings.TrimSpace(body.Message) == "" {
		return MsgRequestFailed
	}
	return body.Message
}
