package stream

import (
	"sync/atomic"

	"github.com/lguimbarda/anyfn/fn/container"
)

// Hooks holds lifecycle callbacks for a stream subscription.
// All fields are optional - nil means no observation for that event.
// Hooks run synchronously on the delivering goroutine, before the
// subscriber's own handler, so they should be fast.
type Hooks struct {
	OnSubscribe func()      // Subscription registered
	OnChunk     func(any)   // Chunk delivered
	OnError     func(error) // Stream failed
	OnEnd       func()      // Stream ended normally
}

// hookInvoker caches which hook kinds are present.
type hookInvoker struct {
	hookSets     []Hooks
	hasSubscribe bool
	hasChunk     bool
	hasError     bool
	hasEnd       bool
}

func newHookInvoker(hookSets []Hooks) *hookInvoker {
	h := &hookInvoker{hookSets: hookSets}
	for _, hooks := range hookSets {
		h.hasSubscribe = h.hasSubscribe || hooks.OnSubscribe != nil
		h.hasChunk = h.hasChunk || hooks.OnChunk != nil
		h.hasError = h.hasError || hooks.OnError != nil
		h.hasEnd = h.hasEnd || hooks.OnEnd != nil
	}
	return h
}

func (h *hookInvoker) hasAny() bool {
	return len(h.hookSets) > 0
}

func (h *hookInvoker) invokeSubscribe() {
	if !h.hasSubscribe {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnSubscribe != nil {
			hooks.OnSubscribe()
		}
	}
}

func (h *hookInvoker) invokeChunk(v any) {
	if !h.hasChunk {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnChunk != nil {
			hooks.OnChunk(v)
		}
	}
}

func (h *hookInvoker) invokeError(err error) {
	if !h.hasError {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnError != nil {
			hooks.OnError(err)
		}
	}
}

func (h *hookInvoker) invokeEnd() {
	if !h.hasEnd {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnEnd != nil {
			hooks.OnEnd()
		}
	}
}

// wrap returns subscriber handlers that run the hooks first.
func (h *hookInvoker) wrap(onChunk func(any), onEnd func(), onError func(error)) (func(any), func(), func(error)) {
	if !h.hasAny() {
		return onChunk, onEnd, onError
	}
	return func(v any) {
			h.invokeChunk(v)
			onChunk(v)
		}, func() {
			h.invokeEnd()
			onEnd()
		}, func(err error) {
			h.invokeError(err)
			onError(err)
		}
}

// observed is a Source with hooks attached.
type observed struct {
	src   container.Source
	hooks *hookInvoker
	used  atomic.Bool
}

// Observe returns a Source that runs hooks around every event of src.
// Like src, the result can be subscribed to once.
func Observe(src container.Source, hooks ...Hooks) container.Source {
	return &observed{src: src, hooks: newHookInvoker(hooks)}
}

func (o *observed) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	if !o.used.CompareAndSwap(false, true) {
		onError(ErrAlreadyConsumed)
		return
	}
	o.hooks.invokeSubscribe()
	o.src.Subscribe(o.hooks.wrap(onChunk, onEnd, onError))
}

// NewSafeHooks wraps every hook in hooks with panic recovery. A recovered
// panic is passed to panicHandler; if panicHandler is nil it is dropped.
func NewSafeHooks(hooks Hooks, panicHandler func(any)) Hooks {
	if panicHandler == nil {
		panicHandler = func(any) {}
	}
	guard := func() {
		if r := recover(); r != nil {
			panicHandler(r)
		}
	}

	var safe Hooks
	if hooks.OnSubscribe != nil {
		safe.OnSubscribe = func() {
			defer guard()
			hooks.OnSubscribe()
		}
	}
	if hooks.OnChunk != nil {
		safe.OnChunk = func(v any) {
			defer guard()
			hooks.OnChunk(v)
		}
	}
	if hooks.OnError != nil {
		safe.OnError = func(err error) {
			defer guard()
			hooks.OnError(err)
		}
	}
	if hooks.OnEnd != nil {
		safe.OnEnd = func() {
			defer guard()
			hooks.OnEnd()
		}
	}
	return safe
}
