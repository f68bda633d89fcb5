// Package telemetry collects hierarchical timings for the load, book and
// query phases. Collectors travel through context so instrumented code never
// changes signature; without a collector in the context every call is a
// no-op.
package telemetry

import (
	"context"
	"io"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector accumulates timing spans.
type Collector interface {
	// Start opens a top-level span. End it when the operation completes.
	Start(name string) Span

	// Report writes the collected timings to w.
	Report(w io.Writer)
}

// Span is one timed operation. Spans nest via Child.
type Span interface {
	End()
	Child(name string) Span
}

// WithCollector attaches a collector to the context.
func WithCollector(ctx context.Context, c Collector) context.Context {
	return context.WithValue(ctx, collectorKey, c)
}

// FromContext returns the context's collector, or a no-op one.
func FromContext(ctx context.Context) Collector {
	if c, ok := ctx.Value(collectorKey).(Collector); ok {
		return c
	}
	return noopCollector{}
}

type noopCollector struct{}

func (noopCollector) Start(string) Span { return noopSpan{} }
func (noopCollector) Report(io.Writer)  {}

type noopSpan struct{}

func (noopSpan) End()              {}
func (noopSpan) Child(string) Span { return noopSpan{} }
