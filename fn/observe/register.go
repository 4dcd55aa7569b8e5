// Package observe builds stream.Hooks for monitoring, metrics and debugging
// of stream sources and the streams derived from them by traversal operators.
//
// Every builder returns plain hooks; attach them with stream.WithHooks when a
// source is created or with stream.Observe around any existing source.
package observe

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lguimbarda/anyfn/fn/stream"
)

// Counter provides thread-safe counting of chunks and errors.
type Counter struct {
	chunks atomic.Int64
	errors atomic.Int64
}

// NewCounter returns a zeroed Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Hooks returns hooks that update c.
func (c *Counter) Hooks() stream.Hooks {
	return stream.Hooks{
		OnChunk: func(any) { c.chunks.Add(1) },
		OnError: func(error) { c.errors.Add(1) },
	}
}

// Chunks returns the count of chunks delivered.
func (c *Counter) Chunks() int64 { return c.chunks.Load() }

// Errors returns the count of failures.
func (c *Counter) Errors() int64 { return c.errors.Load() }

// Total returns the total count of chunks and errors.
func (c *Counter) Total() int64 { return c.chunks.Load() + c.errors.Load() }

// ErrorCollector collects the errors that failed observed streams.
type ErrorCollector struct {
	mu     sync.Mutex
	errors []error
}

// NewErrorCollector returns an empty ErrorCollector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// Hooks returns hooks that record every failure into c.
func (c *ErrorCollector) Hooks() stream.Hooks {
	return stream.Hooks{
		OnError: func(err error) {
			c.mu.Lock()
			c.errors = append(c.errors, err)
			c.mu.Unlock()
		},
	}
}

// Errors returns a copy of all collected errors.
func (c *ErrorCollector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasErrors returns true if any errors were collected.
func (c *ErrorCollector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) > 0
}

// Count returns the number of collected errors.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// Logger returns hooks that log the lifecycle of a stream named name.
// Subscription, chunks and end are logged at debug level, failures at error
// level. A nil logger uses slog.Default().
func Logger(logger *slog.Logger, name string) stream.Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("stream", name))
	return stream.Hooks{
		OnSubscribe: func() {
			logger.Debug("stream subscribed")
		},
		OnChunk: func(v any) {
			logger.Debug("stream chunk", slog.Any("value", v))
		},
		OnError: func(err error) {
			logger.Error("stream failed", slog.Any("error", err))
		},
		OnEnd: func() {
			logger.Debug("stream ended")
		},
	}
}
