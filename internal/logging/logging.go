// Package logging writes request lifecycle events to a slog.Logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	eventbus "github.com/hanpama/polygraph/internal/eventbus"
	events "github.com/hanpama/polygraph/internal/events"
	reqid "github.com/hanpama/polygraph/internal/reqid"
)

// NewLogger returns a logger writing to w. format is "text" or "json".
func NewLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// Subscribe logs events published on the global bus to logger. Field
// dispatches log at debug level; failures log at warn.
func Subscribe(logger *slog.Logger) (unsubscribe func()) {
	attrs := func(ctx context.Context, extra ...any) []any {
		if rid, ok := reqid.FromContext(ctx); ok {
			return append([]any{slog.Int64("rid", rid)}, extra...)
		}
		return extra
	}

	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			logger.InfoContext(ctx, "http request", attrs(ctx,
				slog.String("method", e.Request.Method),
				slog.String("path", e.Request.URL.Path),
				slog.Int("status", e.Status),
				slog.Int("operations", e.Operations),
				slog.Duration("duration", e.Duration),
			)...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			level := slog.LevelDebug
			if len(e.Errors) > 0 {
				level = slog.LevelWarn
			}
			args := attrs(ctx,
				slog.String("operation", e.OperationName),
				slog.String("type", e.OperationType),
				slog.Bool("persisted", e.Persisted),
				slog.Int("errors", len(e.Errors)),
				slog.Duration("duration", e.Duration),
			)
			if len(e.Errors) > 0 {
				args = append(args, slog.String("first_error", e.Errors[0].Error()))
			}
			logger.Log(ctx, level, "graphql operation", args...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.FieldDispatchFinish) {
			args := attrs(ctx,
				slog.String("type", e.Type),
				slog.String("concrete", e.ConcreteType),
				slog.String("path", e.Path),
				slog.Duration("duration", e.Duration),
			)
			if e.Err != nil {
				logger.WarnContext(ctx, "field dispatch failed", append(args, slog.Any("error", e.Err))...)
				return
			}
			logger.DebugContext(ctx, "field dispatched", args...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.PersistedQueryMiss) {
			logger.DebugContext(ctx, "persisted query not found", attrs(ctx, slog.String("hash", e.Hash))...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.PersistedQueryRegistered) {
			logger.DebugContext(ctx, "persisted query registered", attrs(ctx, slog.String("hash", e.Hash))...)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
