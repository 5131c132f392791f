package levelset

type options struct {
	logger           *Logger
	sign             bool
	bandCapacityHint int
	exchange         BoundaryExchange
}

var defaultOptions = options{
	sign: true,
}

// Option configures a LevelSet engine.
type Option func(*options)

// WithLogger sets the logger used by the engine. A nil logger disables
// logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSign controls whether the surface stores signed distances (the
// default) or absolute distances. The octree band sizer disables the sign on
// its auxiliary proxy evaluation.
func WithSign(sign bool) Option {
	return func(o *options) {
		o.sign = sign
	}
}

// WithBandCapacityHint pre-sizes the narrow-band store for the expected band
// cell count. It is a performance hint only.
func WithBandCapacityHint(n int) Option {
	return func(o *options) {
		o.bandCapacityHint = n
	}
}

// WithBoundaryExchange installs a hook invoked after each successful Update.
// Distributed callers hang their boundary/halo synchronization here.
func WithBoundaryExchange(fn BoundaryExchange) Option {
	return func(o *options) {
		o.exchange = fn
	}
}
