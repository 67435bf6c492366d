package otel

import (
	"context"
	"strconv"
	"sync"

	eventbus "github.com/hanpama/polygraph/internal/eventbus"
	events "github.com/hanpama/polygraph/internal/events"
	reqid "github.com/hanpama/polygraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "polygraph"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub, err := NewSubscriber(tp.Tracer(instrumentationName), otel.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	unsubscribe := sub.Register()

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Subscriber turns lifecycle events into spans and counters. Spans are
// correlated through the request ID in the event context.
type Subscriber struct {
	tracer         trace.Tracer
	httpSpans      sync.Map // rid -> trace.Span
	gqlSpans       sync.Map // rid -> trace.Span
	dispatchSpans  sync.Map // rid/path -> trace.Span
	dispatches     metric.Int64Counter
	dispatchErrors metric.Int64Counter
	persisted      metric.Int64Counter
}

func NewSubscriber(tracer trace.Tracer, meter metric.Meter) (*Subscriber, error) {
	s := &Subscriber{tracer: tracer}
	var err error
	if s.dispatches, err = meter.Int64Counter("polygraph.dispatch.count",
		metric.WithDescription("Fields dispatched to concrete objects of interfaces and unions.")); err != nil {
		return nil, err
	}
	if s.dispatchErrors, err = meter.Int64Counter("polygraph.dispatch.errors",
		metric.WithDescription("Dispatched fields whose resolver failed.")); err != nil {
		return nil, err
	}
	if s.persisted, err = meter.Int64Counter("polygraph.persisted_query.lookups",
		metric.WithDescription("Persisted query lookups by outcome.")); err != nil {
		return nil, err
	}
	return s, nil
}

func dispatchKey(rid int64, path string) string {
	return strconv.FormatInt(rid, 10) + "/" + path
}

// Register subscribes s to the global event bus.
func (s *Subscriber) Register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "http.request")
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
			)
			s.httpSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.httpSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status), attribute.Int("graphql.operations", e.Operations))
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if v, ok := s.httpSpans.Load(rid); ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "graphql.operation")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
				attribute.Bool("graphql.persisted", e.Persisted),
			)
			s.gqlSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.gqlSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.FieldDispatchStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if v, ok := s.gqlSpans.Load(rid); ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "graphql.resolve")
			span.SetAttributes(
				attribute.String("graphql.field.path", e.Path),
				attribute.String("graphql.field.name", e.Field),
				attribute.String("graphql.type.abstract", e.Type),
				attribute.String("graphql.type.concrete", e.ConcreteType),
			)
			s.dispatchSpans.Store(dispatchKey(rid, e.Path), span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.FieldDispatchFinish) {
			attrs := metric.WithAttributes(
				attribute.String("graphql.type.abstract", e.Type),
				attribute.String("graphql.type.concrete", e.ConcreteType),
			)
			s.dispatches.Add(ctx, 1, attrs)
			if e.Err != nil {
				s.dispatchErrors.Add(ctx, 1, attrs)
			}

			rid, _ := reqid.FromContext(ctx)
			v, ok := s.dispatchSpans.LoadAndDelete(dispatchKey(rid, e.Path))
			if !ok {
				return
			}
			span := v.(trace.Span)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.PersistedQueryHit) {
			s.persisted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "hit")))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.PersistedQueryMiss) {
			s.persisted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "miss")))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.PersistedQueryRegistered) {
			s.persisted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "registered")))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
