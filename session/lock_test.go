package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tailored-agentic-units/webagent/session"
)

func TestLocker_Exclusive(t *testing.T) {
	var l session.Locker

	unlock, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := l.Lock(context.Background(), "a")
		if err == nil {
			close(acquired)
			u()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired a held session")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired after unlock")
	}
}

func TestLocker_DifferentIDsDoNotContend(t *testing.T) {
	var l session.Locker

	unlock, _ := l.Lock(context.Background(), "a")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	other, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock(b) blocked on a: %v", err)
	}
	other()
}

func TestLocker_ContextCancel(t *testing.T) {
	var l session.Locker

	unlock, _ := l.Lock(context.Background(), "a")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Lock(ctx, "a")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestLocker_BusyAndRelease(t *testing.T) {
	var l session.Locker

	if l.Busy("a") {
		t.Error("unused id reported busy")
	}

	unlock, _ := l.Lock(context.Background(), "a")
	if !l.Busy("a") {
		t.Error("held id not reported busy")
	}

	unlock()
	unlock() // idempotent

	if l.Busy("a") {
		t.Error("released id still reported busy")
	}

	again, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("relock failed: %v", err)
	}
	again()
}
