package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apq "github.com/hanpama/polygraph/internal/apq"
	"github.com/hanpama/polygraph/internal/eventbus"
	executor "github.com/hanpama/polygraph/internal/executor"
	"github.com/hanpama/polygraph/internal/introspection"
	"github.com/hanpama/polygraph/internal/logging"
	objrt "github.com/hanpama/polygraph/internal/objrt"
	"github.com/hanpama/polygraph/internal/otel"
	"github.com/hanpama/polygraph/internal/schema"
	"github.com/hanpama/polygraph/internal/server"
)

const rootUsage = `polygraph: GraphQL server for interface and union types

USAGE:
  polygraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  sdl              Print the schema with its interfaces and unions
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -config <file>                      YAML config file; flags given explicitly override it
  -graphql.schema <file>              SDL file with object types (default: built-in demo)
  -graphql.types <file>               YAML file with interface and union definitions
  -graphql.introspection <bool>       Enable GraphQL introspection (default: true)
  -server.addr <addr>                 HTTP listen address (default: :8080)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body-bytes <n>          Request body limit (default: unlimited)
  -server.metadata-header <name>      Forward HTTP header into resolver metadata. Repeatable
  -server.cors-origin <origin>        Allowed CORS origin, * for any. Repeatable
  -server.graphiql <bool>             Serve GraphiQL on GET (default: true)
  -apq.enabled <bool>                 Enable persisted queries (default: true)
  -apq.cache-size <n>                 Persisted query cache size (default: 1000)
  -apq.verify <bool>                  Verify persisted query hashes (default: true)
  -log.format <text|json>             Log format (default: text)
  -log.level <level>                  Log level (default: info)
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: polygraph)
`

const sdlUsage = `sdl FLAGS:
  -graphql.schema <file>   SDL file with object types (default: built-in demo)
  -graphql.types <file>    YAML file with interface and union definitions
  -out <file>              Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("polygraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer))
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "sdl":
		return cmdSDL(os.Stdout, cmdArgs)
	case "help":
		return cmdHelp(os.Stdout, cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(w io.Writer, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(w, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(w, serveUsage)
	case "sdl":
		fmt.Fprint(w, sdlUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	cfg, err := parseServeConfig(args)
	if err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	logger, err := logging.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	eventbus.Use(eventbus.New())
	defer logging.Subscribe(logger)()
	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	a, err := loadApp(cfg.GraphQL.Schema, cfg.GraphQL.Types)
	if err != nil {
		return err
	}
	h, err := newHandler(cfg, a)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("GraphQL server listening", slog.String("addr", cfg.Server.Addr), slog.Int("types", a.registry.Len()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newHandler(cfg config, a *app) (*server.Handler, error) {
	var runtime executor.Runtime = objrt.NewRuntime(a.registry, objrt.WithSchema(a.schema))
	sch := a.schema
	if cfg.GraphQL.Introspection {
		wrapper, err := introspection.Wrap(runtime, sch)
		if err != nil {
			return nil, fmt.Errorf("introspection: %w", err)
		}
		runtime = wrapper.Runtime
		sch = wrapper.Schema
	}

	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithGraphiQL(cfg.Server.GraphiQL),
		server.WithRootValue(a.root),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.Server.MaxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
	}
	if len(cfg.Server.MetadataHeaders) > 0 {
		sopts = append(sopts, server.WithMetadataHeaders(cfg.Server.MetadataHeaders...))
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	if cfg.APQ.Enabled {
		storage, err := apq.NewLRUStorage(cfg.APQ.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("persisted query cache: %w", err)
		}
		var popts []apq.Option
		if !cfg.APQ.Verify {
			popts = append(popts, apq.WithoutHashVerification())
		}
		sopts = append(sopts, server.WithPersistedQueries(apq.New(storage, popts...)))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}
	return h, nil
}

func cmdSDL(w io.Writer, args []string) error {
	var schemaPath, typesPath, outFile string
	fs := flag.NewFlagSet("sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "graphql.schema", "", "SDL file with object types")
	fs.StringVar(&typesPath, "graphql.types", "", "YAML file with interface and union definitions")
	fs.StringVar(&outFile, "out", "", "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, sdlUsage)
		return err
	}

	a, err := loadApp(schemaPath, typesPath)
	if err != nil {
		return err
	}
	sdl := schema.Render(a.schema)
	if outFile == "" {
		_, err := io.WriteString(w, sdl)
		return err
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
