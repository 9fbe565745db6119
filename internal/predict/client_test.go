package predict

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/govchat/internal"
)

func fastMockOptions(brand string) MockOptions {
	return MockOptions{Brand: brand}
}

func newMockClient(t *testing.T, opts MockOptions) *Client {
	t.Helper()
	srv := httptest.NewServer(NewMockServer(opts))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClient_Health(t *testing.T) {
	c := newMockClient(t, fastMockOptions(internal.BrandCow))
	assert.NoError(t, c.Health(context.Background()))
}

func TestClient_Predict(t *testing.T) {
	c := newMockClient(t, fastMockOptions(internal.BrandCow))

	resp, err := c.Predict(context.Background(), Request{Question: "How do I set buyAmount with slippage?"})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
	assert.Contains(t, resp.Data.Answer, "buyAmount with slippage")
	assert.Equal(t, []string{
		"https://docs.cow.fi/",
		"https://docs.cow.fi/docs/Integration/Order-book/order-creation",
	}, resp.Data.URLSupporting)
}

func TestClient_PredictErrors(t *testing.T) {
	c := newMockClient(t, fastMockOptions(internal.BrandCow))

	tests := []struct {
		name       string
		req        Request
		wantStatus int
		wantMsg    string
	}{
		{name: "simulated failure", req: Request{Question: "q", ShouldError: true}, wantStatus: 500, wantMsg: SimulatedErrorMessage},
		{name: "empty question", req: Request{Question: "  "}, wantStatus: 400, wantMsg: "question is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Predict(context.Background(), tt.req)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_PredictErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"answer":"","url_supporting":[]},"error":"index unavailable"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Predict(context.Background(), Request{Question: "q"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "index unavailable", apiErr.Message)
	require.NotNil(t, resp)
	assert.Equal(t, "index unavailable", *resp.Error)
}

func TestClient_PredictStream(t *testing.T) {
	for _, brand := range []string{internal.BrandCow, internal.BrandOptimism} {
		t.Run(brand, func(t *testing.T) {
			c := newMockClient(t, fastMockOptions(brand))

			var chunks []string
			answer, err := c.PredictStream(context.Background(), Request{Question: "q"}, func(s string) {
				chunks = append(chunks, s)
			})
			require.NoError(t, err)
			assert.Equal(t, canned[brand].stream+" ", answer)
			assert.Equal(t, answer, strings.Join(chunks, ""))
			assert.NotContains(t, answer, DoneSentinel)
		})
	}
}

func TestClient_PredictStreamBroken(t *testing.T) {
	c := newMockClient(t, fastMockOptions(internal.BrandCow))

	_, err := c.PredictStream(context.Background(), Request{Question: "q", ShouldError: true}, nil)
	var streamErr *StreamError
	assert.ErrorAs(t, err, &streamErr)
}

func TestClient_PredictStreamSplitSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := w.(http.Flusher)
		for _, part := range []string{"Use ", "`fast` ", "quotes [D", "ONE]\n"} {
			_, _ = w.Write([]byte(part))
			f.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	answer, err := NewClient(srv.URL).PredictStream(context.Background(), Request{Question: "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Use `fast` quotes ", answer)
}

func TestClient_PredictStreamWithoutSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("cut short"))
	}))
	defer srv.Close()

	answer, err := NewClient(srv.URL).PredictStream(context.Background(), Request{Question: "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cut short", answer)
}

func TestClient_PredictStreamCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("partial "))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	answer, err := NewClient(srv.URL).PredictStream(ctx, Request{Question: "q"}, func(string) {
		cancel()
	})
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.Equal(t, "partial ", answer)
}

func TestClient_StreamAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).PredictStream(context.Background(), Request{Question: "q"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "model loading", apiErr.Message)
}

func TestClient_RequestShape(t *testing.T) {
	var got Request
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"data":{"answer":"ok","url_supporting":[]},"error":null}`))
	}))
	defer srv.Close()

	history := []internal.Message{
		{Name: "user", Data: internal.Data{Answer: "first"}},
		{Name: "CoW AI", Data: internal.Data{Answer: "reply"}},
	}
	_, err := NewClient(srv.URL+"/").Predict(context.Background(), NewRequest("second", history))
	require.NoError(t, err)

	_, parseErr := uuid.Parse(requestID)
	assert.NoError(t, parseErr, "request id %q", requestID)
	assert.Equal(t, "second", got.Question)
	assert.Equal(t, []internal.MemoryEntry{
		{Name: "user", Message: "first"},
		{Name: "chat", Message: "reply"},
	}, got.Memory)
	assert.False(t, got.ShouldError)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url).Health(context.Background())
	assert.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAPIError_Message(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"message":"Simulated error in stream"}`, want: "Simulated error in stream"},
		{body: `{"error":"bad"}`, want: "bad"},
		{body: `{"error":{"code":3}}`, want: "map[code:3]"},
		{body: "plain text\n", want: "plain text"},
		{body: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, newAPIError(500, []byte(tt.body)).Message, "body %q", tt.body)
	}
	assert.Contains(t, (&APIError{StatusCode: 502}).Error(), "Bad Gateway")
}
