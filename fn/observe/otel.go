package observe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lguimbarda/anyfn/fn/stream"
)

// Instrument names used by Otel.
const (
	OtelChunks   = "anyfn.stream.chunks"
	OtelErrors   = "anyfn.stream.errors"
	OtelLatency  = "anyfn.stream.latency_ms"
	OtelDuration = "anyfn.stream.duration_ms"
)

// Otel returns hooks that record stream activity on OpenTelemetry
// instruments created from meter: a chunk counter, an error counter, a
// histogram of the latency between chunks and a histogram of the stream
// duration. attrs are attached to every measurement.
func Otel(meter metric.Meter, attrs ...attribute.KeyValue) (stream.Hooks, error) {
	chunks, err := meter.Int64Counter(OtelChunks, metric.WithDescription("count of chunks delivered"))
	if err != nil {
		return stream.Hooks{}, fmt.Errorf("create chunks counter: %w", err)
	}
	errs, err := meter.Int64Counter(OtelErrors, metric.WithDescription("count of failed streams"))
	if err != nil {
		return stream.Hooks{}, fmt.Errorf("create errors counter: %w", err)
	}
	latency, err := meter.Int64Histogram(OtelLatency,
		metric.WithDescription("latency between chunks"), metric.WithUnit("ms"))
	if err != nil {
		return stream.Hooks{}, fmt.Errorf("create latency histogram: %w", err)
	}
	duration, err := meter.Int64Histogram(OtelDuration,
		metric.WithDescription("time from subscription to end or failure"), metric.WithUnit("ms"))
	if err != nil {
		return stream.Hooks{}, fmt.Errorf("create duration histogram: %w", err)
	}

	var (
		ctx   = context.Background()
		opt   = metric.WithAttributes(attrs...)
		mu    sync.Mutex
		start time.Time
		last  time.Time
	)
	finish := func(status string) {
		mu.Lock()
		elapsed := time.Since(start)
		mu.Unlock()
		duration.Record(ctx, elapsed.Milliseconds(), opt,
			metric.WithAttributes(attribute.String("status", status)))
	}

	return stream.Hooks{
		OnSubscribe: func() {
			mu.Lock()
			start = time.Now()
			last = time.Time{}
			mu.Unlock()
		},
		OnChunk: func(any) {
			now := time.Now()
			mu.Lock()
			prev := last
			last = now
			mu.Unlock()
			if !prev.IsZero() {
				latency.Record(ctx, now.Sub(prev).Milliseconds(), opt)
			}
			chunks.Add(ctx, 1, opt)
		},
		OnError: func(error) {
			errs.Add(ctx, 1, opt)
			finish("error")
		},
		OnEnd: func() {
			finish("ok")
		},
	}, nil
}
