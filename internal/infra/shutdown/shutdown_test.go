package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"first", "second", "third"} {
		h.OnShutdown(name, func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait(context.Background())
	}()

	// Give Wait time to set up signal handler
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("hooks called = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hooks called = %v, want %v", order, want)
		}
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Wait_HookErrors(t *testing.T) {
	h := NewHandler(5 * time.Second)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := false

	h.OnShutdown("ok", func(ctx context.Context) error {
		ran = true
		return nil
	})
	h.OnShutdown("a", func(ctx context.Context) error { return errA })
	h.OnShutdown("b", func(ctx context.Context) error { return errB })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Wait(ctx)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Wait() = %v, want both hook errors", err)
	}
	if !ran {
		t.Error("a failing hook should not stop later hooks")
	}
}

func TestHandler_Trigger(t *testing.T) {
	h := NewHandler(time.Second)

	cause := errors.New("listener failed")
	h.Trigger(cause)
	h.Trigger(errors.New("ignored"))

	err := h.Wait(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("Wait() = %v, want %v", err, cause)
	}
}

func TestHandler_HookTimeout(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h.Trigger(nil)

	start := time.Now()
	err := h.Wait(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("hook timeout was not enforced")
	}
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5 * time.Second)

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}
