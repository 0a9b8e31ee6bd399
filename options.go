package soa

import (
	"os"
	"strconv"

	"github.com/hupe1980/soa/codec"
	"github.com/hupe1980/soa/internal/layout"
	"github.com/hupe1980/soa/internal/simd"
	"github.com/hupe1980/soa/resource"
)

// AlignmentEnv overrides DefaultAlignment when set to a power of two.
const AlignmentEnv = "SOA_ALIGNMENT"

type options struct {
	alignment        int
	policy           Policy
	backend          Backend
	parallelism      int
	controller       *resource.Controller
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Builder behavior.
type Option func(*options)

// DefaultAlignment returns the alignment used when WithAlignment is not given.
//
// It is the larger of the CPU cache line and the widest vector register
// available, and can be overridden with the SOA_ALIGNMENT environment variable.
func DefaultAlignment() int {
	if v := os.Getenv(AlignmentEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && layout.IsPowerOfTwo(n) {
			return n
		}
	}
	return simd.PreferredAlignment()
}

// WithAlignment sets the byte alignment of every dense field array.
// It must be a power of two no smaller than the widest element type;
// Build reports ErrInvalidAlignment otherwise.
func WithAlignment(alignment int) Option {
	return func(o *options) {
		o.alignment = alignment
	}
}

// WithFootprintPolicy selects how vector field footprints are accounted.
//
// FootprintCompact (default) pads each vector field once. FootprintPerRecord
// pads every record's chunk separately and sums the results; elements are
// still packed, the extra bytes trail the field.
func WithFootprintPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithBackend selects where storage lives. BackendMmap keeps large batches
// off the Go heap; call Container.Close to release it.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithParallelism populates up to n fields concurrently.
// Values <= 1 populate sequentially.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithResourceController shares a memory budget, worker slots and
// a throughput limit between builds.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithCodec configures the codec used by the dump helpers.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &soa.BasicMetricsCollector{}
//	c, _ := soa.New(ctx, schema, records, soa.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		policy:           FootprintCompact,
		backend:          BackendHeap,
		parallelism:      1,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.alignment == 0 {
		o.alignment = DefaultAlignment()
	}
	return o
}
