package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yongseopkim/workrecap/errs"
)

func TestClient_GetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"name":"alice"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"})

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.get(context.Background(), "/user", nil, "", &out))
	assert.Equal(t, "alice", out.Name)
}

func TestClient_RetriesOnServerErrorThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.get(context.Background(), "/flaky", nil, "", &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_PermanentClientErrorDoesNotRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"})

	err := c.get(context.Background(), "/missing", nil, "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_PermissionDenied403DoesNotRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Must have admin rights to Repository."}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"})

	err := c.get(context.Background(), "/forbidden", nil, "", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "a plain permission-denied 403 must not burn rate-limit retries")

	var fe *errs.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, errs.ClassPermanent, fe.Class)
}

func TestClient_RateLimited403RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"API rate limit exceeded for installation."}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"})

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.get(context.Background(), "/ratelimited", nil, "", &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestJitter_StaysWithinQuarterRange(t *testing.T) {
	d := jitter(100 * 1_000_000) // 100ms in nanoseconds as time.Duration
	assert.InDelta(t, 100_000_000, int64(d), 25_000_000)
}
