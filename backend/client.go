package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

type BackendClient interface {
	ListBookings(ctx context.Context, date string) ([]Booking, error)
	CreateBooking(ctx context.Context, booking NewBooking) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	Login(ctx context.Context, credentials Credentials) (User, error)
	Signup(ctx context.Context, credentials Credentials) error
	ForgetCredentials()
}

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
	Burst             int
}

type Client struct {
	baseURL  string
	timeout  time.Duration
	cacheTTL time.Duration
	limiter  *rate.Limiter
	cache    *cache.Cache
	group    singleflight.Group
	logger   *slog.Logger

	mu           sync.Mutex
	plain        *http.Client
	credentialed *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
		cacheTTL: opts.CacheTTL,
		limiter:  rate.NewLimiter(limit, opts.Burst),
		cache:    cache.New(opts.CacheTTL, 5*time.Minute),
		logger:   slog.Default().With("component", "backend"),
		plain:    &http.Client{Timeout: opts.Timeout},
	}

	c.credentialed = c.newCredentialedClient()

	return c
}

// ListBookings returns every booking of date. Concurrent calls for the same
// date share one request, which keeps running when the caller that started
// it gives up; each caller only stops waiting on its own ctx.
func (c *Client) ListBookings(ctx context.Context, date string) ([]Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := "bookings:" + date

	if cached, found := c.cache.Get(cacheKey); found {
		return cloneBookings(cached.([]Booking)), nil
	}

	ch := c.group.DoChan(cacheKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		bookings := []Booking{}

		err := c.do(fetchCtx, request{
			method: http.MethodGet,
			path:   []string{"api", "bookings"},
			query:  url.Values{"date": {date}},
		}, &bookings)

		if err != nil {
			return nil, fmt.Errorf("failed to fetch bookings for date '%v': %w", date, err)
		}

		if c.cacheTTL > 0 {
			c.cache.Set(cacheKey, bookings, cache.DefaultExpiration)
		}

		return bookings, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return cloneBookings(res.Val.([]Booking)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) CreateBooking(ctx context.Context, booking NewBooking) (Booking, error) {
	var res createBookingResponse

	err := c.do(ctx, request{
		method:       http.MethodPost,
		path:         []string{"api", "bookings"},
		body:         booking,
		credentialed: true,
	}, &res)

	if err != nil {
		return Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}

	c.cache.Delete("bookings:" + booking.Date)

	return res.Booking, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	if len(strings.TrimSpace(id)) == 0 {
		return errors.New("booking id cannot be empty")
	}

	err := c.do(ctx, request{
		method:       http.MethodDelete,
		path:         []string{"api", "bookings", id},
		credentialed: true,
	}, nil)

	if err != nil {
		return fmt.Errorf("failed to delete booking '%v': %w", id, err)
	}

	// the deleted booking's date is unknown here
	c.cache.Flush()

	return nil
}

func (c *Client) Login(ctx context.Context, credentials Credentials) (User, error) {
	var res loginResponse

	err := c.do(ctx, request{
		method:       http.MethodPost,
		path:         []string{"api", "auth", "login"},
		body:         credentials,
		credentialed: true,
	}, &res)

	if err != nil {
		return User{}, fmt.Errorf("failed to log in: %w", err)
	}

	return res.User, nil
}

func (c *Client) Signup(ctx context.Context, credentials Credentials) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   []string{"api", "auth", "signup"},
		body:   credentials,
	}, nil)

	if err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}

	return nil
}

// ForgetCredentials drops every cookie received from the booking API.
func (c *Client) ForgetCredentials() {
	client := c.newCredentialedClient()

	c.mu.Lock()
	c.credentialed = client
	c.mu.Unlock()

	c.cache.Flush()
}

type request struct {
	method       string
	path         []string
	query        url.Values
	body         any
	credentialed bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	reqURL, err := c.getURL(r.path...)

	if err != nil {
		return err
	}

	if len(r.query) != 0 {
		reqURL += "?" + r.query.Encode()
	}

	var body io.Reader = http.NoBody

	if r.body != nil {
		payload, err := json.Marshal(r.body)

		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)

	if err != nil {
		return fmt.Errorf("failed create new request: %w", err)
	}

	requestID := uuid.NewString()
	c.setHeaders(req, requestID)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request not sent: %w", err)
	}

	res, err := c.httpClient(r.credentialed).Do(req)

	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	c.logger.Debug("booking api call", "method", r.method, "url", reqURL, "status", res.StatusCode, "requestId", requestID)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		remoteErr := &RemoteError{Status: res.StatusCode}

		if readErr == nil {
			var errRes errorResponse
			if json.Unmarshal(bodyBytes, &errRes) == nil {
				remoteErr.Message = errRes.Message
			}
		}

		return remoteErr
	}

	if readErr != nil {
		return fmt.Errorf("failed to read body: %w", readErr)
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed reading body: %w", err)
	}

	return nil
}

func (c *Client) httpClient(credentialed bool) *http.Client {
	if !credentialed {
		return c.plain
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.credentialed
}

func (c *Client) newCredentialedClient() *http.Client {
	// cookiejar.New only fails on a bad PublicSuffixList, none is given
	jar, _ := cookiejar.New(nil)

	return &http.Client{Timeout: c.timeout, Jar: jar}
}

func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
}

func (c *Client) getURL(elem ...string) (string, error) {
	clientURL, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return "", fmt.Errorf("failed to create URL: %w", err)
	}

	return clientURL, nil
}

func cloneBookings(bookings []Booking) []Booking {
	return append([]Booking{}, bookings...)
}
