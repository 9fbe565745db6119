package predict

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/iksnae/govchat/internal"
)

// SimulatedErrorMessage is returned when a request sets shouldError
const SimulatedErrorMessage = "Simulated error in stream"

// MockOptions configures the simulated prediction service
type MockOptions struct {
	// Brand selects the canned answers ("cow" or "optimism")
	Brand string
	// ResponseDelay is waited before any reply
	ResponseDelay time.Duration
	// MinWordDelay and MaxWordDelay bound the pause between streamed words
	MinWordDelay time.Duration
	MaxWordDelay time.Duration
	// ErrorDelay is waited after the headers before a simulated stream failure
	ErrorDelay time.Duration
}

// DefaultMockOptions mimics a slow, typing assistant
func DefaultMockOptions() MockOptions {
	return MockOptions{
		Brand:         internal.BrandCow,
		ResponseDelay: time.Second,
		MinWordDelay:  10 * time.Millisecond,
		MaxWordDelay:  50 * time.Millisecond,
		ErrorDelay:    50 * time.Millisecond,
	}
}

type cannedAnswers struct {
	stream  string
	predict internal.Data
}

var canned = map[string]cannedAnswers{
	internal.BrandCow: {
		stream: `CoW Protocol provides infrastructure for trading (CoW Swap) and the Order Book API. Key points:

1. **Order Book API** – Programmatic order placement and quoting; use ` + "`buyAmount`" + ` with slippage for limit orders.

2. **Token approval** – You can set approval via ABI for gasless swaps; the API supports signing orders without transferring tokens first.

3. **Quoting** – Use "fast" for quick quotes or "optimal" when you want the best execution path.

4. **Errors** – InsufficientBalance usually means the solver cannot fulfill the order; check balance and slippage.

For more details see docs.cow.fi and the Order Book API documentation.`,
		predict: internal.Data{
			Answer: "To set buyAmount with slippage when creating an order, use the Order Book API quote endpoint to get a quote, then place an order with the desired limit. You can specify a slippage tolerance; the API returns valid order parameters. See the CoW Protocol integration docs at docs.cow.fi for exact request fields and examples.",
			URLSupporting: []string{
				"https://docs.cow.fi/",
				"https://docs.cow.fi/docs/Integration/Order-book/order-creation",
			},
		},
	},
	internal.BrandOptimism: {
		stream: `Optimism governance is split between two houses. Key points:

1. **Token House** – OP holders and their delegates vote on protocol upgrades, inflation and grants.

2. **Citizens' House** – Citizens vote on **Retro Funding**, rewarding projects for impact already delivered.

3. **Delegation** – You can delegate your OP to yourself or to a delegate from the ` + "`vote.optimism.io`" + ` page.

Read the latest proposals on the governance forum.`,
		predict: internal.Data{
			Answer: "Optimism governance is run by the Token House and the Citizens' House. OP holders delegate voting power to delegates who vote on proposals each season, while Citizens decide how Retro Funding is allocated. Check the governance forum for active proposals.",
			URLSupporting: []string{
				"https://gov.optimism.io/t/working-constitution-of-the-optimism-collective/55",
				"https://community.optimism.io/docs/governance/",
			},
		},
	},
}

type mockServer struct {
	opts MockOptions
	rng  func(n int64) int64
}

// NewMockServer builds an echo server simulating the prediction API:
// GET /up, POST /predict and POST /predict_stream
func NewMockServer(opts MockOptions) *echo.Echo {
	if _, ok := canned[opts.Brand]; !ok {
		opts.Brand = internal.BrandCow
	}
	m := &mockServer{opts: opts, rng: rand.Int63n}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			internal.LogDebug("%d %s %s request_id=%s", v.Status, v.Method, v.URI, v.RequestID)
			return nil
		},
	}))

	e.GET("/up", m.up)
	e.POST("/predict", m.predict)
	e.POST("/predict_stream", m.predictStream)
	return e
}

// RunMockServer serves the mock on addr until ctx is done
func RunMockServer(ctx context.Context, addr string, opts MockOptions) error {
	e := NewMockServer(opts)
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func (m *mockServer) up(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (m *mockServer) bind(c echo.Context) (Request, error) {
	var req Request
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return req, nil
}

func (m *mockServer) predict(c echo.Context) error {
	req, err := m.bind(c)
	if err != nil {
		return err
	}
	if err := sleep(c.Request().Context(), m.opts.ResponseDelay); err != nil {
		return nil
	}

	if req.ShouldError {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": SimulatedErrorMessage})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}
	return c.JSON(http.StatusOK, Response{Data: canned[m.opts.Brand].predict})
}

func (m *mockServer) predictStream(c echo.Context) error {
	req, err := m.bind(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := sleep(ctx, m.opts.ResponseDelay); err != nil {
		return nil
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	if req.ShouldError {
		_ = sleep(ctx, m.opts.ErrorDelay)
		// aborts the response mid-body so the client sees a broken stream
		panic(http.ErrAbortHandler)
	}

	for _, word := range strings.Split(canned[m.opts.Brand].stream, " ") {
		if err := sleep(ctx, m.wordDelay()); err != nil {
			return nil
		}
		if _, err := resp.Write([]byte(word + " ")); err != nil {
			return nil
		}
		resp.Flush()
	}

	if err := sleep(ctx, m.wordDelay()); err != nil {
		return nil
	}
	_, _ = resp.Write([]byte(DoneSentinel + "\n"))
	resp.Flush()
	return nil
}

func (m *mockServer) wordDelay() time.Duration {
	lo, hi := m.opts.MinWordDelay, m.opts.MaxWordDelay
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(m.rng(int64(hi-lo)+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
