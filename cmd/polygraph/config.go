package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// config holds the serve settings. It is read from an optional YAML file;
// flags set on the command line override the file.
type config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		Timeout         time.Duration `yaml:"timeout"`
		Pretty          bool          `yaml:"pretty"`
		MaxBodyBytes    int64         `yaml:"max-body-bytes"`
		MetadataHeaders []string      `yaml:"metadata-headers"`
		CORSOrigins     []string      `yaml:"cors-origins"`
		GraphiQL        bool          `yaml:"graphiql"`
	} `yaml:"server"`
	GraphQL struct {
		Introspection bool   `yaml:"introspection"`
		Schema        string `yaml:"schema"`
		Types         string `yaml:"types"`
	} `yaml:"graphql"`
	APQ struct {
		Enabled   bool `yaml:"enabled"`
		CacheSize int  `yaml:"cache-size"`
		Verify    bool `yaml:"verify"`
	} `yaml:"apq"`
	Log struct {
		Format string `yaml:"format"`
		Level  string `yaml:"level"`
	} `yaml:"log"`
	Otel struct {
		Endpoint string `yaml:"endpoint"`
		Service  string `yaml:"service"`
	} `yaml:"otel"`
}

func defaultConfig() config {
	var c config
	c.Server.Addr = ":8080"
	c.Server.Timeout = 10 * time.Second
	c.Server.GraphiQL = true
	c.GraphQL.Introspection = true
	c.APQ.Enabled = true
	c.APQ.CacheSize = 1000
	c.APQ.Verify = true
	c.Log.Format = "text"
	c.Log.Level = "info"
	c.Otel.Service = "polygraph"
	return c
}

type stringListFlag struct{ list *[]string }

func (s stringListFlag) String() string {
	if s.list == nil {
		return ""
	}
	return strings.Join(*s.list, ",")
}

func (s stringListFlag) Set(v string) error {
	*s.list = append(*s.list, v)
	return nil
}

// bindServeFlags registers the serve flags on fs, writing into c. The
// returned map copies each flag's setting from one config to another.
func bindServeFlags(fs *flag.FlagSet, c *config) map[string]func(dst, src *config) {
	fs.StringVar(&c.Server.Addr, "server.addr", c.Server.Addr, "HTTP listen address")
	fs.DurationVar(&c.Server.Timeout, "server.timeout", c.Server.Timeout, "Per-request timeout")
	fs.BoolVar(&c.Server.Pretty, "server.pretty", c.Server.Pretty, "Pretty-print JSON responses")
	fs.Int64Var(&c.Server.MaxBodyBytes, "server.max-body-bytes", c.Server.MaxBodyBytes, "Request body limit")
	fs.Var(stringListFlag{&c.Server.MetadataHeaders}, "server.metadata-header", "Forward HTTP header into resolver metadata")
	fs.Var(stringListFlag{&c.Server.CORSOrigins}, "server.cors-origin", "Allowed CORS origin")
	fs.BoolVar(&c.Server.GraphiQL, "server.graphiql", c.Server.GraphiQL, "Serve GraphiQL")
	fs.BoolVar(&c.GraphQL.Introspection, "graphql.introspection", c.GraphQL.Introspection, "Enable GraphQL introspection")
	fs.StringVar(&c.GraphQL.Schema, "graphql.schema", c.GraphQL.Schema, "SDL file with object types")
	fs.StringVar(&c.GraphQL.Types, "graphql.types", c.GraphQL.Types, "YAML file with interface and union definitions")
	fs.BoolVar(&c.APQ.Enabled, "apq.enabled", c.APQ.Enabled, "Enable persisted queries")
	fs.IntVar(&c.APQ.CacheSize, "apq.cache-size", c.APQ.CacheSize, "Persisted query cache size")
	fs.BoolVar(&c.APQ.Verify, "apq.verify", c.APQ.Verify, "Verify persisted query hashes")
	fs.StringVar(&c.Log.Format, "log.format", c.Log.Format, "Log format: text or json")
	fs.StringVar(&c.Log.Level, "log.level", c.Log.Level, "Log level")
	fs.StringVar(&c.Otel.Endpoint, "otel.endpoint", c.Otel.Endpoint, "OTLP collector endpoint")
	fs.StringVar(&c.Otel.Service, "otel.service", c.Otel.Service, "OpenTelemetry service name")

	return map[string]func(dst, src *config){
		"server.addr":            func(d, s *config) { d.Server.Addr = s.Server.Addr },
		"server.timeout":         func(d, s *config) { d.Server.Timeout = s.Server.Timeout },
		"server.pretty":          func(d, s *config) { d.Server.Pretty = s.Server.Pretty },
		"server.max-body-bytes":  func(d, s *config) { d.Server.MaxBodyBytes = s.Server.MaxBodyBytes },
		"server.metadata-header": func(d, s *config) { d.Server.MetadataHeaders = s.Server.MetadataHeaders },
		"server.cors-origin":     func(d, s *config) { d.Server.CORSOrigins = s.Server.CORSOrigins },
		"server.graphiql":        func(d, s *config) { d.Server.GraphiQL = s.Server.GraphiQL },
		"graphql.introspection":  func(d, s *config) { d.GraphQL.Introspection = s.GraphQL.Introspection },
		"graphql.schema":         func(d, s *config) { d.GraphQL.Schema = s.GraphQL.Schema },
		"graphql.types":          func(d, s *config) { d.GraphQL.Types = s.GraphQL.Types },
		"apq.enabled":            func(d, s *config) { d.APQ.Enabled = s.APQ.Enabled },
		"apq.cache-size":         func(d, s *config) { d.APQ.CacheSize = s.APQ.CacheSize },
		"apq.verify":             func(d, s *config) { d.APQ.Verify = s.APQ.Verify },
		"log.format":             func(d, s *config) { d.Log.Format = s.Log.Format },
		"log.level":              func(d, s *config) { d.Log.Level = s.Log.Level },
		"otel.endpoint":          func(d, s *config) { d.Otel.Endpoint = s.Otel.Endpoint },
		"otel.service":           func(d, s *config) { d.Otel.Service = s.Otel.Service },
	}
}

// parseServeConfig parses serve arguments. With -config the file is loaded
// over the defaults and explicitly set flags are applied on top.
func parseServeConfig(args []string) (config, error) {
	fromFlags := defaultConfig()
	var configPath string
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	fs.StringVar(&configPath, "config", "", "YAML config file")
	copiers := bindServeFlags(fs, &fromFlags)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if configPath == "" {
		return fromFlags, nil
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := copiers[f.Name]; ok {
			apply(&cfg, &fromFlags)
		}
	})
	return cfg, nil
}

func loadConfigFile(path string) (config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
