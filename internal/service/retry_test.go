package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/utils"
)

func deadlockErr() error {
	return &pq.Error{Code: "40P01", Message: "deadlock detected"}
}

func serializationErr() error {
	return &pq.Error{Code: "40001", Message: "could not serialize access"}
}

func TestIsDeadlock(t *testing.T) {
	if !IsDeadlock(deadlockErr()) {
		t.Fatal("40P01 should be a deadlock")
	}
	if !IsDeadlock(serializationErr()) {
		t.Fatal("40001 should be a deadlock")
	}
	if !IsDeadlock(fmt.Errorf("wrapped: %w", deadlockErr())) {
		t.Fatal("wrapped deadlock should still match")
	}
	if IsDeadlock(&pq.Error{Code: "23505"}) {
		t.Fatal("unique violation is not a deadlock")
	}
	if IsDeadlock(errors.New("plain error")) {
		t.Fatal("plain error is not a deadlock")
	}
}

func TestWithDeadlockRetryEventualSuccess(t *testing.T) {
	attempts := 0
	err := WithDeadlockRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return deadlockErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithDeadlockRetry: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithDeadlockRetryNonDeadlockFailsFast(t *testing.T) {
	attempts := 0
	sentinel := errors.New("constraint violation")
	err := WithDeadlockRetry(context.Background(), func() error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on non-deadlock)", attempts)
	}
}

func TestWithDeadlockRetryExhaustion(t *testing.T) {
	attempts := 0
	err := WithDeadlockRetry(context.Background(), func() error {
		attempts++
		return deadlockErr()
	})
	if !errors.Is(err, utils.ErrTransientContention) {
		t.Fatalf("got %v, want ErrTransientContention", err)
	}
	if attempts != maxDeadlockRetries+1 {
		t.Fatalf("attempts = %d, want %d", attempts, maxDeadlockRetries+1)
	}
}

func TestWithDeadlockRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := WithDeadlockRetry(ctx, func() error {
		return deadlockErr()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
}
