package plan

import "github.com/nnvm-go/nnvm/mem"

// Option configures Compile.
type Option func(*options)

type options struct {
	alignment uint64
}

func defaultOptions() options {
	return options{alignment: 1}
}

// WithAlignment rounds every allocation up to a multiple of align bytes
// (e.g. 64 for cache-line alignment, or an accelerator's required buffer
// alignment). align must be a power of two.
func WithAlignment(align uint64) Option {
	return func(o *options) { o.alignment = align }
}

// WithMaxSize is accepted for forward compatibility with a workspace size
// cap but is not currently enforced: Compile never refuses to grow the
// workspace, it only reports the final Watermark for a caller to check
// against its own budget.
func WithMaxSize(max uint64) Option {
	return func(o *options) {}
}

// Result is the outcome of Compile: every Info that appeared in the
// analyzed spec maps to the byte Range it was assigned within a single
// workspace buffer of size WorkspaceSize.
type Result struct {
	Ranges        map[*mem.Info]mem.Range
	WorkspaceSize uint64
}

// Compile runs lifetime analysis over spec and then best-fit allocation
// over the resulting action stream, producing one Range per distinct Info.
func Compile(spec LifetimeSpec, opts ...Option) Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	actions := Analyze(spec)
	alloc := NewAllocator(o.alignment)
	ranges := make(map[*mem.Info]mem.Range, len(actions)/2)

	for _, a := range actions {
		switch a.Kind {
		case Alloc:
			ranges[a.Info] = alloc.Take(a.Info.Size)
		case Free:
			if r, ok := ranges[a.Info]; ok {
				alloc.Put(r)
			}
		}
	}

	return Result{Ranges: ranges, WorkspaceSize: alloc.Watermark()}
}
