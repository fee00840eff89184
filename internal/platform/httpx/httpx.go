package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTooLarge is returned by Download when the body is longer than the limit.
var ErrTooLarge = errors.New("response body too large")

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s http %d: %s", e.Service, e.StatusCode, body)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// Request describes one JSON call. Calls are made exactly once; callers decide what a failure means.
type Request struct {
	Service string
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// DoJSON sends req and decodes a 2xx JSON body into out (when out is non-nil).
func DoJSON(ctx context.Context, client *http.Client, req Request, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var buf bytes.Buffer
	if req.Body != nil {
		if err := json.NewEncoder(&buf).Encode(req.Body); err != nil {
			return fmt.Errorf("%s encode request: %w", req.Service, err)
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, &buf)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request: %w", req.Service, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("%s read body: %w", req.Service, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Service: req.Service, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s decode error: %w", req.Service, err)
	}
	return nil
}

// Download fetches url and returns the body and its content type.
func Download(ctx context.Context, client *http.Client, url string, maxBytes int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &StatusError{Service: "download", StatusCode: resp.StatusCode}
	}
	var r io.Reader = resp.Body
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, maxBytes)
	}
	return b, resp.Header.Get("Content-Type"), nil
}
