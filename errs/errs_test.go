package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		rateLimited bool
		want        Classification
	}{
		{"not found", http.StatusNotFound, false, ClassPermanent},
		{"forbidden not rate limited", http.StatusForbidden, false, ClassPermanent},
		{"forbidden rate limited", http.StatusForbidden, true, ClassRetryable},
		{"unprocessable entity", http.StatusUnprocessableEntity, false, ClassPermanent},
		{"too many requests", http.StatusTooManyRequests, true, ClassRetryable},
		{"server error", http.StatusInternalServerError, false, ClassRetryable},
		{"transport error", 0, false, ClassRetryable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyHTTPStatus(tc.status, tc.rateLimited))
		})
	}
}

func TestFetchError_ErrorMessage(t *testing.T) {
	err := &FetchError{Reason: "rate limited", Endpoint: "/search/issues", Attempts: 3, Status: 429, Class: ClassRetryable}
	assert.Contains(t, err.Error(), "/search/issues")
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Contains(t, err.Error(), "429")
}

func TestFetchError_ErrorMessageWithoutStatus(t *testing.T) {
	err := &FetchError{Reason: "context deadline exceeded", Endpoint: "/search/issues", Attempts: 2}
	msg := err.Error()
	assert.Contains(t, msg, "/search/issues")
	assert.NotContains(t, msg, "status")
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &FetchError{Cause: cause}
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestStepFailedError_WrapsCauseMessage(t *testing.T) {
	inner := &NormalizeError{Date: "2026-01-05", Msg: "missing raw file"}
	outer := &StepFailedError{Step: "normalize", Cause: inner}

	assert.Contains(t, outer.Error(), "normalize")
	assert.Contains(t, outer.Error(), "missing raw file")

	var got *NormalizeError
	assert.True(t, errors.As(outer, &got))
	assert.Equal(t, "2026-01-05", got.Date)
}

func TestStorageError_NeverFatalByConvention(t *testing.T) {
	err := &StorageError{Backend: "redis", Op: "MirrorDailyStats", Cause: errors.New("connection refused")}
	assert.Contains(t, err.Error(), "redis")
	assert.Contains(t, err.Error(), "MirrorDailyStats")
}
