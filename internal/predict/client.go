package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iksnae/govchat/internal"
)

const (
	// DefaultBaseURL is where the prediction API is expected locally
	DefaultBaseURL = "http://localhost:8000"

	// RequestIDHeader carries a per-request id for log correlation
	RequestIDHeader = "X-Request-Id"

	readBufferSize = 4 * 1024
	maxErrorBody   = 64 * 1024
)

// Client calls the prediction API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL. Streaming responses have no
// overall timeout; cancel through the context instead.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	internal.LogDebug("%s %s request_id=%s", method, req.URL.Path, id)
	return req, nil
}

// do sends req and turns non-2xx replies into *APIError
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, body)
		internal.LogDebug("%s %s request_id=%s failed: %v", req.Method, req.URL.Path, req.Header.Get(RequestIDHeader), apiErr)
		return nil, apiErr
	}
	return resp, nil
}

// Predict asks one question and waits for the whole answer
func (c *Client) Predict(ctx context.Context, r Request) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/predict", r)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	if out.Error != nil && *out.Error != "" {
		return &out, &APIError{StatusCode: resp.StatusCode, Message: *out.Error}
	}
	return &out, nil
}

// PredictStream asks one question and forwards answer text to onChunk as it
// arrives. It returns the full answer once the [DONE] sentinel is read.
//
// A stream that breaks returns the partial answer and a *StreamError. When
// ctx is cancelled the partial answer is returned with ctx.Err().
func (c *Client) PredictStream(ctx context.Context, r Request, onChunk func(string)) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/predict_stream", r)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var (
		answer strings.Builder
		filter sentinelFilter
		buf    = make([]byte, readBufferSize)
		start  = time.Now()
	)
	forward := func(text string) {
		if text == "" {
			return
		}
		answer.WriteString(text)
		if onChunk != nil {
			onChunk(text)
		}
	}

	for !filter.done {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			forward(filter.write(buf[:n]))
		}
		if readErr == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return answer.String(), ctxErr
		}
		if errors.Is(readErr, io.EOF) {
			if !filter.done {
				forward(filter.flush())
				internal.LogDebug("stream ended without %s after %s", DoneSentinel, time.Since(start))
			}
			return answer.String(), nil
		}
		forward(filter.flush())
		return answer.String(), &StreamError{Partial: answer.String(), Err: readErr}
	}

	internal.LogDebug("stream done in %s (%d bytes)", time.Since(start), answer.Len())
	return answer.String(), nil
}

// Health checks the service's /up endpoint
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/up", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
