// Package host implements a client for a GitHub-Enterprise-compatible REST
// and Search API, grounded on the teacher's http/client.go retry engine:
// bounded retries with jittered backoff, 4xx short-circuiting, and a shared
// pool for concurrent callers.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/yongseopkim/workrecap/errs"
	"github.com/yongseopkim/workrecap/logging"
)

const (
	maxRateLimitRetries   = 7
	maxServerErrorRetries = 3
	maxBackoff            = 300 * time.Second
	searchMinInterval     = 2 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryCap int // overrides maxRateLimitRetries when > 0
}

// Client talks to one GitHub-Enterprise instance, executing requests with
// the retry/backoff discipline from spec §4.1.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	retryCap int
	throttle *searchThrottle
	logger   *logging.ContextLogger
}

// searchThrottle is the shared state for the two search endpoints: a
// golang.org/x/time/rate limiter enforcing the minimum call interval, plus
// quota awareness derived from the rate-limit response headers (which
// x/time/rate has no notion of). Clients drawn from the same Pool share one
// instance so concurrent callers throttle against each other.
type searchThrottle struct {
	limiter *rate.Limiter
	state   chan searchState
}

type searchState struct {
	remaining int
	resetAt   time.Time
}

func newSearchThrottle() *searchThrottle {
	t := &searchThrottle{
		limiter: rate.NewLimiter(rate.Every(searchMinInterval), 1),
		state:   make(chan searchState, 1),
	}
	t.state <- searchState{remaining: -1}
	return t
}

// NewClient builds a standalone Client with its own search throttle. Callers
// that need several concurrent clients sharing one host's search quota
// should use Pool instead.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retryCap := cfg.RetryCap
	if retryCap <= 0 {
		retryCap = maxRateLimitRetries
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		retryCap: retryCap,
		throttle: newSearchThrottle(),
		logger:   logging.New("host.client"),
	}
}

func withThrottle(c *Client, t *searchThrottle) *Client {
	clone := *c
	clone.throttle = t
	return &clone
}

// rawResponse is doRequest's per-attempt result, carried through
// cenkalti/backoff/v5's generic Retry until a terminal outcome is reached.
type rawResponse struct {
	body []byte
	resp *http.Response
}

// attemptBackOff is a cenkalti/backoff/v5 BackOff whose NextBackOff returns
// whatever wait the most recent doRequest attempt computed: the three-tier
// rate-limit wait (Retry-After, then X-RateLimit-Reset, then exponential) for
// 403/429 responses, or plain jittered exponential backoff for transport and
// server errors, per spec §4.1.
type attemptBackOff struct {
	wait time.Duration
}

func (b *attemptBackOff) NextBackOff() time.Duration { return b.wait }

// doRequest executes one logical request end to end, retrying on rate-limit
// and server-error responses with the two independent bounded counters
// described in spec §4.1. It returns the response body bytes and the final
// *http.Response (for header inspection) once a non-retryable outcome is
// reached.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, accept string) ([]byte, *http.Response, error) {
	fullURL := c.baseURL + path
	if query != nil {
		fullURL += "?" + query.Encode()
	}

	var rateLimitAttempts, serverErrAttempts int
	bo := &attemptBackOff{}

	op := func() (rawResponse, error) {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
		if err != nil {
			return rawResponse{}, backoff.Permanent(&errs.FetchError{Reason: "build request", Endpoint: path, Cause: err})
		}
		req.Header.Set("Authorization", "token "+c.token)
		if accept != "" {
			req.Header.Set("Accept", accept)
		} else {
			req.Header.Set("Accept", "application/vnd.github+json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			serverErrAttempts++
			if serverErrAttempts > maxServerErrorRetries {
				return rawResponse{}, backoff.Permanent(&errs.FetchError{
					Reason: "transport error", Endpoint: path, Attempts: serverErrAttempts,
					Class: errs.ClassRetryable, Cause: err,
				})
			}
			bo.wait = c.loggedExponentialWait(serverErrAttempts, "transient error, retrying")
			return rawResponse{}, err
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return rawResponse{}, backoff.Permanent(&errs.FetchError{Reason: "read body", Endpoint: path, Cause: readErr})
		}
		raw := rawResponse{body: body, resp: resp}

		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			rateLimited := resp.StatusCode == http.StatusTooManyRequests || rateLimitSignaled(resp, body)
			if !rateLimited {
				return raw, backoff.Permanent(&errs.FetchError{
					Reason: "forbidden", Endpoint: path, Attempts: 1,
					Status: resp.StatusCode, Class: errs.ClassifyHTTPStatus(resp.StatusCode, false),
				})
			}

			rateLimitAttempts++
			if rateLimitAttempts > c.retryCap {
				return raw, backoff.Permanent(&errs.FetchError{
					Reason: "rate limit exhausted", Endpoint: path, Attempts: rateLimitAttempts,
					Status: resp.StatusCode, Class: errs.ClassifyHTTPStatus(resp.StatusCode, true),
				})
			}
			bo.wait = c.rateLimitWait(resp, rateLimitAttempts)
			return raw, fmt.Errorf("rate limited with status %d", resp.StatusCode)
		}

		if resp.StatusCode >= 500 {
			serverErrAttempts++
			if serverErrAttempts > maxServerErrorRetries {
				return raw, backoff.Permanent(&errs.FetchError{
					Reason: "server error", Endpoint: path, Attempts: serverErrAttempts,
					Status: resp.StatusCode, Class: errs.ClassRetryable,
				})
			}
			bo.wait = c.loggedExponentialWait(serverErrAttempts, "transient error, retrying")
			return raw, fmt.Errorf("server error with status %d", resp.StatusCode)
		}

		if resp.StatusCode >= 400 {
			class := errs.ClassifyHTTPStatus(resp.StatusCode, false)
			return raw, backoff.Permanent(&errs.FetchError{
				Reason: "client error", Endpoint: path, Status: resp.StatusCode, Class: class,
			})
		}

		return raw, nil
	}

	raw, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.retryCap+maxServerErrorRetries+2)),
		backoff.WithMaxElapsedTime(time.Hour),
	)
	if err != nil {
		var fe *errs.FetchError
		if errors.As(err, &fe) {
			return raw.body, raw.resp, fe
		}
		return raw.body, raw.resp, err
	}
	return raw.body, raw.resp, nil
}

// rateLimitSignaled reports whether a 403 response actually signals rate-limit
// exhaustion (spec §4.1/§7), as opposed to a plain permission-denied 403. GitHub
// Enterprise indicates the former via X-RateLimit-Remaining: 0 or a message body
// naming "rate limit"; anything else is a permanent authorization failure.
func rateLimitSignaled(resp *http.Response, body []byte) bool {
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	return strings.Contains(strings.ToLower(string(body)), "rate limit")
}

// rateLimitWait computes the three-tier wait strategy from spec §4.1:
// Retry-After header, then X-RateLimit-Reset, then exponential backoff
// capped at 300s, all jittered by up to ±25%. The returned duration is
// handed to attemptBackOff for cenkalti/backoff/v5 to actually sleep through.
func (c *Client) rateLimitWait(resp *http.Response, attempt int) time.Duration {
	var wait time.Duration

	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait == 0 {
		if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
			if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
				if d := time.Until(time.Unix(epoch, 0)); d > 0 {
					wait = d
				}
			}
		}
	}
	if wait == 0 {
		wait = c.exponentialBackoff(attempt)
	}

	wait = jitter(wait)
	c.logger.WithFields(map[string]interface{}{
		"attempt": attempt, "wait_ms": wait.Milliseconds(), "status": resp.StatusCode,
	}).Warn("rate limited, waiting before retry")
	return wait
}

// loggedExponentialWait computes the jittered exponential backoff for a
// transport or server-error attempt and logs it before cenkalti/backoff/v5
// sleeps through the returned duration.
func (c *Client) loggedExponentialWait(attempt int, msg string) time.Duration {
	wait := jitter(c.exponentialBackoff(attempt))
	c.logger.WithFields(map[string]interface{}{"attempt": attempt, "wait_ms": wait.Milliseconds()}).Warn(msg)
	return wait
}

func (c *Client) exponentialBackoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// jitter applies ±25% randomisation to a duration.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.25
	offset := (rand.Float64()*2 - 1) * delta
	return d + time.Duration(offset)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// get performs a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, accept string, out interface{}) error {
	body, _, err := c.doRequest(ctx, http.MethodGet, path, query, accept)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &errs.FetchError{Reason: "decode response", Endpoint: path, Cause: err}
	}
	return nil
}

// throttledSearch blocks for the search minimum interval and any
// quota-driven wait before invoking fn, then updates the shared quota state
// from the response.
func (c *Client) throttledSearch(ctx context.Context, fn func() (*http.Response, error)) error {
	if err := c.throttle.limiter.Wait(ctx); err != nil {
		return err
	}

	st := <-c.throttle.state
	if st.remaining >= 0 && st.remaining < 10 && !st.resetAt.IsZero() {
		if wait := time.Until(st.resetAt); wait > 0 {
			c.logger.WithField("reset_at", st.resetAt).Warn("search quota nearly exhausted, blocking until reset")
			sleep(ctx, wait)
		}
	} else if st.remaining >= 0 && st.remaining < 100 {
		c.logger.WithField("remaining", st.remaining).Warn("search quota running low")
	}

	resp, err := fn()
	if resp != nil {
		if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
			if n, parseErr := strconv.Atoi(v); parseErr == nil {
				st.remaining = n
			}
		}
		if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
			if epoch, parseErr := strconv.ParseInt(v, 10, 64); parseErr == nil {
				st.resetAt = time.Unix(epoch, 0)
			}
		}
	}
	c.throttle.state <- st
	return err
}

// paginate walks every page of a listing endpoint at 100 items per page,
// warning once the cumulative item count exceeds 1000 (spec §4.1's
// result-set truncation notice).
func paginate[T any](ctx context.Context, c *Client, path string, baseQuery url.Values, accept string) ([]T, error) {
	var all []T
	page := 1
	warned := false
	for {
		q := url.Values{}
		for k, v := range baseQuery {
			q[k] = v
		}
		q.Set("per_page", "100")
		q.Set("page", strconv.Itoa(page))

		var batch []T
		if err := c.get(ctx, path, q, accept, &batch); err != nil {
			return all, err
		}
		all = append(all, batch...)
		if len(all) > 1000 && !warned {
			c.logger.WithField("endpoint", path).Warn("result set exceeds 1000 items, consider narrowing the query")
			warned = true
		}
		if len(batch) < 100 {
			return all, nil
		}
		page++
	}
}
