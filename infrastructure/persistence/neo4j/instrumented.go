package neo4j

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OperationObserver records the outcome of store calls
type OperationObserver interface {
	ObserveDBOperation(operation string, duration time.Duration, err error)
}

// InstrumentedRunner wraps a Runner with tracing spans and operation metrics
type InstrumentedRunner struct {
	next     Runner
	tracer   trace.Tracer
	observer OperationObserver
}

// NewInstrumentedRunner wraps next. observer may be nil.
func NewInstrumentedRunner(next Runner, tracer trace.Tracer, observer OperationObserver) *InstrumentedRunner {
	return &InstrumentedRunner{next: next, tracer: tracer, observer: observer}
}

// Read implements Runner
func (r *InstrumentedRunner) Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	ctx, span := r.start(ctx, "read", query)
	defer span.End()

	start := time.Now()
	records, err := r.next.Read(ctx, query, params)
	r.finish(span, "read", start, err)
	if err == nil {
		span.SetAttributes(attribute.Int("db.records", len(records)))
	}
	return records, err
}

// Write implements Runner
func (r *InstrumentedRunner) Write(ctx context.Context, query string, params map[string]any) (*WriteResult, error) {
	ctx, span := r.start(ctx, "write", query)
	defer span.End()

	start := time.Now()
	result, err := r.next.Write(ctx, query, params)
	r.finish(span, "write", start, err)
	if err == nil {
		span.SetAttributes(
			attribute.Int("db.records", len(result.Records)),
			attribute.Int("db.nodes_deleted", result.NodesDeleted),
			attribute.Int("db.relationships_deleted", result.RelationshipsDeleted),
		)
	}
	return result, err
}

func (r *InstrumentedRunner) start(ctx context.Context, mode, query string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "neo4j."+mode,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.String("db.statement", query),
		),
	)
}

func (r *InstrumentedRunner) finish(span trace.Span, mode string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if r.observer != nil {
		r.observer.ObserveDBOperation(mode, time.Since(start), err)
	}
}
