package stream

// DefaultBufferSize is the channel buffer between a producer goroutine and
// the goroutine delivering chunks to subscribers.
const DefaultBufferSize = 64

type config struct {
	bufferSize int
	hooks      []Hooks
}

func newConfig(opts []Option) config {
	cfg := config{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Stream.
type Option func(*config)

// WithBufferSize sets the producer channel buffer. Zero means unbuffered;
// negative sizes are ignored.
func WithBufferSize(size int) Option {
	return func(cfg *config) {
		if size >= 0 {
			cfg.bufferSize = size
		}
	}
}

// WithHooks attaches lifecycle hooks. Multiple hook sets run in the order
// they were given.
func WithHooks(hooks ...Hooks) Option {
	return func(cfg *config) {
		cfg.hooks = append(cfg.hooks, hooks...)
	}
}
