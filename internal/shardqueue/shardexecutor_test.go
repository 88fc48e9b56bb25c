package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newExecutor(cfg Config) *ShardExecutor {
	return NewShardExecutor(cfg, zerolog.Nop())
}

func TestShardExecutor_FIFOPerKey(t *testing.T) {
	ex := newExecutor(Config{Shards: 4, QueueSize: 64})
	defer ex.Stop()

	var mu sync.Mutex
	got := map[string][]int{}
	keys := []string{"u1", "u2", "u3"}
	for i := 0; i < 20; i++ {
		for _, k := range keys {
			k, i := k, i
			if err := ex.Submit(context.Background(), k, JobFunc(func(context.Context) error {
				mu.Lock()
				got[k] = append(got[k], i)
				mu.Unlock()
				return nil
			})); err != nil {
				t.Fatalf("submit: %v", err)
			}
		}
	}
	for _, k := range keys {
		if err := ex.Barrier(context.Background(), k); err != nil {
			t.Fatalf("barrier: %v", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		if len(got[k]) != 20 {
			t.Fatalf("key %s ran %d jobs", k, len(got[k]))
		}
		for i, v := range got[k] {
			if v != i {
				t.Fatalf("key %s out of order: %v", k, got[k])
			}
		}
	}
}

func TestShardExecutor_Retry(t *testing.T) {
	ex := newExecutor(Config{Shards: 1, QueueSize: 10, MaxAttempts: 3, BaseBackoff: 5 * time.Millisecond})
	defer ex.Stop()

	var attempts int32
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestShardExecutor_PermanentSkipsRetry(t *testing.T) {
	var handled []error
	var mu sync.Mutex
	cfg := Config{Shards: 1, MaxAttempts: 5, BaseBackoff: time.Millisecond}
	cfg.ErrorHandler = func(err error) {
		mu.Lock()
		handled = append(handled, err)
		mu.Unlock()
	}
	ex := newExecutor(cfg)
	defer ex.Stop()

	var attempts int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent(errors.New("bad row"))
	}))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Fatalf("permanent error retried: %d attempts", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || !IsPermanent(handled[0]) {
		t.Fatalf("handler got %v", handled)
	}
}

func TestErrorHandler_PanicRecovered(t *testing.T) {
	cfg := Config{Shards: 1, QueueSize: 8, MaxAttempts: 1}
	cfg.ErrorHandler = func(error) { panic("handler panic") }
	ex := newExecutor(cfg)
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return errors.New("boom") }))

	ran := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(ran)
		return nil
	}))
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker did not continue after handler panic")
	}
}

func TestShardExecutor_JobPanicKeepsWorker(t *testing.T) {
	var mu sync.Mutex
	var handled []error
	ex := newExecutor(Config{Shards: 1, QueueSize: 10, MaxAttempts: 3, ErrorHandler: func(err error) {
		mu.Lock()
		handled = append(handled, err)
		mu.Unlock()
	}})
	defer ex.Stop()

	var panics, ran int32
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&panics, 1)
		panic("boom")
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("submit after panic: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if n := atomic.LoadInt32(&panics); n != 1 {
		t.Fatalf("panicking job retried: %d runs", n)
	}
	if n := atomic.LoadInt32(&ran); n != 1 {
		t.Fatalf("job after panic ran %d times", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || !errors.Is(handled[0], ErrJobPanicked) {
		t.Fatalf("expected one ErrJobPanicked, got %v", handled)
	}
}

func TestShardExecutor_SkipsCanceledJob(t *testing.T) {
	var handlerCalls int32
	cfg := Config{Shards: 1, QueueSize: 2, MaxAttempts: 1}
	cfg.ErrorHandler = func(error) { atomic.AddInt32(&handlerCalls, 1) }
	ex := newExecutor(cfg)
	defer ex.Stop()

	block, unblock := context.WithCancel(context.Background())
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-block.Done()
		return nil
	}))
	<-started

	var ran int32
	jobCtx, cancelJob := context.WithCancel(context.Background())
	if err := ex.Submit(jobCtx, "k", JobFunc(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancelJob()
	unblock()

	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) == 1 {
		t.Fatal("canceled job should not run")
	}
	if atomic.LoadInt32(&handlerCalls) == 0 {
		t.Fatal("expected error handler for canceled job")
	}
}

func TestShardExecutor_QueueFull(t *testing.T) {
	ex := newExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))

	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	close(release)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) || qf.Capacity != 1 {
		t.Fatalf("unexpected error detail: %v", err)
	}
}

func TestShardExecutor_StopDrainsAndRejects(t *testing.T) {
	ex := newExecutor(Config{Shards: 2, QueueSize: 16})

	var ran int32
	for i := 0; i < 10; i++ {
		_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	ex.Stop()
	ex.Stop()

	if n := atomic.LoadInt32(&ran); n != 10 {
		t.Fatalf("expected every queued job to run, got %d", n)
	}
	if err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil })); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c.Shards != 4 || c.QueueSize != 128 || c.MaxAttempts != 8 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.EnqueueTimeout != 100*time.Millisecond || c.MaxInterval != 20*time.Second {
		t.Fatalf("unexpected durations: %+v", c)
	}
}
