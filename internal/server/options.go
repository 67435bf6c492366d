package server

import (
	"time"

	apq "github.com/hanpama/polygraph/internal/apq"
)

type Options struct {
	// Timeout applies when the incoming request carries no deadline. Zero
	// disables it.
	Timeout time.Duration
	Pretty  bool
	// MaxBodyBytes limits POST bodies; zero means unlimited.
	MaxBodyBytes int64
	// CORS is disabled while AllowedOrigins is empty.
	CORS CORSOptions
	// MetadataHeaders are copied, case-insensitively, into the outgoing gRPC
	// metadata resolvers see.
	MetadataHeaders []string
	GraphiQL        bool
	// PersistedQueries resolves the persistedQuery extension when set.
	PersistedQueries *apq.Processor
	// RootValue is the source of root fields.
	RootValue any
}

type CORSOptions struct {
	AllowedOrigins []string
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{Timeout: 10 * time.Second, GraphiQL: true}
}

func WithTimeout(d time.Duration) Option     { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                     { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option        { return func(o *Options) { o.MaxBodyBytes = n } }
func WithGraphiQL(enable bool) Option        { return func(o *Options) { o.GraphiQL = enable } }
func WithRootValue(v any) Option             { return func(o *Options) { o.RootValue = v } }
func WithCORS(origins ...string) Option      { return func(o *Options) { o.CORS.AllowedOrigins = origins } }
func WithMetadataHeaders(h ...string) Option { return func(o *Options) { o.MetadataHeaders = h } }

func WithPersistedQueries(p *apq.Processor) Option {
	return func(o *Options) { o.PersistedQueries = p }
}
