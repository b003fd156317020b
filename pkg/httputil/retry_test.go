package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/teamtree/pkg/errors"
)

var fast = Backoff{Attempts: 3, Delay: time.Millisecond}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fast, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: stderrors.New("flaky")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := stderrors.New("bad request")
	calls := 0
	err := Retry(context.Background(), fast, func() error {
		calls++
		return permanent
	})
	if !stderrors.Is(err, permanent) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fast, func() error {
		calls++
		return &RetryableError{Err: stderrors.New("down")}
	})
	if err == nil || calls != 3 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, Backoff{Attempts: 5, Delay: time.Hour}, func() error {
		return &RetryableError{Err: stderrors.New("down")}
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantCode  errors.Code
		retryable bool
	}{
		{http.StatusOK, "", false},
		{http.StatusNoContent, "", false},
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized, false},
		{http.StatusForbidden, errors.ErrCodeUnauthorized, false},
		{http.StatusNotFound, errors.ErrCodeNotFound, false},
		{http.StatusTooManyRequests, errors.ErrCodeNetwork, true},
		{http.StatusBadGateway, errors.ErrCodeNetwork, true},
		{http.StatusTeapot, errors.ErrCodeNetwork, false},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if got := errors.GetCode(err); got != tt.wantCode {
			t.Errorf("CheckStatus(%d) code = %s, want %s", tt.code, got, tt.wantCode)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v", tt.code, !tt.retryable)
		}
	}
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == b {
		t.Error("request IDs should be unique")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("NewRequestID() = %q: %v", a, err)
	}
}
