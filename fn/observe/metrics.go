package observe

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguimbarda/anyfn/fn/stream"
)

// StreamMetrics holds statistics about one subscription.
type StreamMetrics struct {
	// Counts
	Chunks int64
	Errors int64

	// Timing
	StartTime      time.Time
	EndTime        time.Time
	FirstChunkTime time.Time
	LastChunkTime  time.Time

	// Throughput
	ChunksPerSecond float64

	// Latency (time between chunks)
	MinLatency time.Duration
	MaxLatency time.Duration
	AvgLatency time.Duration
}

// Meter returns hooks that collect StreamMetrics and pass them to onComplete
// once the stream ends or fails.
func Meter(onComplete func(StreamMetrics)) stream.Hooks {
	var (
		mu           sync.Mutex
		metrics      StreamMetrics
		totalLatency time.Duration
		latencyCount int64
	)

	finish := func() {
		mu.Lock()
		metrics.EndTime = time.Now()
		if metrics.Chunks > 0 {
			if d := metrics.EndTime.Sub(metrics.StartTime).Seconds(); d > 0 {
				metrics.ChunksPerSecond = float64(metrics.Chunks) / d
			}
			if latencyCount > 0 {
				metrics.AvgLatency = totalLatency / time.Duration(latencyCount)
			}
		}
		if latencyCount == 0 {
			metrics.MinLatency = 0
		}
		final := metrics
		mu.Unlock()
		if onComplete != nil {
			onComplete(final)
		}
	}

	return stream.Hooks{
		OnSubscribe: func() {
			mu.Lock()
			metrics = StreamMetrics{
				StartTime:  time.Now(),
				MinLatency: time.Duration(1<<63 - 1),
			}
			mu.Unlock()
		},
		OnChunk: func(any) {
			now := time.Now()
			mu.Lock()
			defer mu.Unlock()
			metrics.Chunks++
			if metrics.Chunks == 1 {
				metrics.FirstChunkTime = now
			} else {
				latency := now.Sub(metrics.LastChunkTime)
				metrics.MinLatency = min(metrics.MinLatency, latency)
				metrics.MaxLatency = max(metrics.MaxLatency, latency)
				totalLatency += latency
				latencyCount++
			}
			metrics.LastChunkTime = now
		},
		OnError: func(error) {
			mu.Lock()
			metrics.Errors++
			mu.Unlock()
			finish()
		},
		OnEnd: finish,
	}
}

// LiveMetrics holds metrics that can be read while streams are running.
type LiveMetrics struct {
	chunks        atomic.Int64
	errors        atomic.Int64
	subscriptions atomic.Int64
	active        atomic.Int64
	startTime     atomic.Int64 // Unix nano
	lastChunkTime atomic.Int64 // Unix nano
}

// Hooks returns hooks that update m. The same LiveMetrics may observe any
// number of streams.
func (m *LiveMetrics) Hooks() stream.Hooks {
	return stream.Hooks{
		OnSubscribe: func() {
			m.startTime.CompareAndSwap(0, time.Now().UnixNano())
			m.subscriptions.Add(1)
			m.active.Add(1)
		},
		OnChunk: func(any) {
			m.chunks.Add(1)
			m.lastChunkTime.Store(time.Now().UnixNano())
		},
		OnError: func(error) {
			m.errors.Add(1)
			m.active.Add(-1)
		},
		OnEnd: func() {
			m.active.Add(-1)
		},
	}
}

// Chunks returns the number of chunks delivered.
func (m *LiveMetrics) Chunks() int64 { return m.chunks.Load() }

// Errors returns the number of failed streams.
func (m *LiveMetrics) Errors() int64 { return m.errors.Load() }

// Subscriptions returns the number of subscriptions seen.
func (m *LiveMetrics) Subscriptions() int64 { return m.subscriptions.Load() }

// Active returns the number of streams that have neither ended nor failed.
func (m *LiveMetrics) Active() int64 { return m.active.Load() }

// LastChunkTime returns when the last chunk was delivered.
func (m *LiveMetrics) LastChunkTime() time.Time {
	return time.Unix(0, m.lastChunkTime.Load())
}

// Duration returns how long ago the first stream was subscribed.
func (m *LiveMetrics) Duration() time.Duration {
	start := m.startTime.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

// ChunksPerSecond returns the current throughput.
func (m *LiveMetrics) ChunksPerSecond() float64 {
	duration := m.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(m.Chunks()) / duration
}
