package observe

import (
	"sync/atomic"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/stream"
)

// Notification represents a materialized stream event.
type Notification struct {
	Kind  NotificationKind
	Value any
	Error error
}

// NotificationKind indicates the type of notification.
type NotificationKind int

const (
	NotificationChunk NotificationKind = iota
	NotificationError
	NotificationEnd
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationChunk:
		return "chunk"
	case NotificationError:
		return "error"
	case NotificationEnd:
		return "end"
	}
	return "unknown"
}

type materialized struct {
	src  container.Source
	used atomic.Bool
}

// Materialize converts every event of src into a Notification chunk. The
// result never fails: a failure of src becomes a NotificationError chunk
// followed by the end of the stream, and the end of src becomes a
// NotificationEnd chunk.
func Materialize(src container.Source) container.Source {
	return &materialized{src: src}
}

func (m *materialized) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	if !m.used.CompareAndSwap(false, true) {
		onError(stream.ErrAlreadyConsumed)
		return
	}
	m.src.Subscribe(func(v any) {
		onChunk(Notification{Kind: NotificationChunk, Value: v})
	}, func() {
		onChunk(Notification{Kind: NotificationEnd})
		onEnd()
	}, func(err error) {
		onChunk(Notification{Kind: NotificationError, Error: err})
		onEnd()
	})
}

type dematerialized struct {
	src  container.Source
	used atomic.Bool
}

// Dematerialize reverses Materialize: NotificationChunk chunks are delivered
// as their value, a NotificationError fails the stream and a NotificationEnd
// ends it. Chunks that are not notifications pass through unchanged.
func Dematerialize(src container.Source) container.Source {
	return &dematerialized{src: src}
}

func (d *dematerialized) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	if !d.used.CompareAndSwap(false, true) {
		onError(stream.ErrAlreadyConsumed)
		return
	}
	var finished atomic.Bool
	d.src.Subscribe(func(v any) {
		if finished.Load() {
			return
		}
		n, ok := v.(Notification)
		if !ok {
			onChunk(v)
			return
		}
		switch n.Kind {
		case NotificationChunk:
			onChunk(n.Value)
		case NotificationError:
			if finished.CompareAndSwap(false, true) {
				onError(n.Error)
			}
		case NotificationEnd:
			if finished.CompareAndSwap(false, true) {
				onEnd()
			}
		}
	}, func() {
		if finished.CompareAndSwap(false, true) {
			onEnd()
		}
	}, func(err error) {
		if finished.CompareAndSwap(false, true) {
			onError(err)
		}
	})
}
