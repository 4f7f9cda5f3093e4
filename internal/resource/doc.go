// Package resource implements the Controller for global limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: track and limit bytes held by native, mapped and heap buffers (fail-fast)
//   - Workers: bound the goroutines a fork-join task tree may occupy
//   - IO: rate-limit snapshot streams so exports do not starve foreground work
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Worker Slots   │  IO Rate Limiter        │
//	│  (fail-fast)    │  (semaphore)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  TryAcquire-    │  AcquireIO              │
//	│  ReleaseMemory  │  Worker         │  RateLimitedWriter      │
//	│  MemoryUsage    │  ReleaseWorker  │  RateLimitedReader      │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns immediately with
// ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(1 << 20); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # Worker Slots
//
// Fork-join pools never block on a worker slot: a task that cannot obtain a
// slot runs inline in the forking goroutine, so nested joins cannot deadlock.
//
//	if rc.TryAcquireWorker() {
//	    go func() { defer rc.ReleaseWorker(); work() }()
//	} else {
//	    work()
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops
// (TryAcquireWorker on nil always fails, so work runs inline).
package resource
