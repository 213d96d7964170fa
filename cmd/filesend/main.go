// Command filesend serves a directory over HTTP, preferring precompressed variants of files.
//
//	filesend [serve] [flags] [root]
//	filesend precompress [flags] [root]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/samthor/filesend/config"
	"github.com/samthor/filesend/precompress"
	"github.com/samthor/filesend/resolve"
	"github.com/samthor/filesend/serve"
	"github.com/samthor/filesend/static"
)

// this is set at build time
var version = "DEV"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "precompress") {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "precompress":
		return runPrecompress(ctx, args)
	default:
		return runServe(ctx, args)
	}
}

func setupLogging(level zerolog.Level) {
	log.Logger = log.Level(level).Output(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Str("version", version).Logger()
}

func runServe(ctx context.Context, args []string) error {
	var configFile string

	flagSet := pflag.NewFlagSet("filesend serve", pflag.ContinueOnError)
	flagSet.StringVarP(&configFile, "config", "c", "", "YAML config file")
	addr := flagSet.String("addr", "", "address to listen on (default: localhost:$PORT or localhost:8080)")
	serveAll := flagSet.Bool("all", false, "listen on all interfaces")
	index := flagSet.String("index", "", "index file served for directories")
	extensions := flagSet.StringSlice("ext", nil, "extensions tried for paths without one, e.g. html")
	encodings := flagSet.StringSlice("encodings", nil, "precompressed encodings to serve (br, zstd, gzip)")
	maxAge := flagSet.Float64("max-age", 0, "Cache-Control max-age in seconds")
	immutable := flagSet.Bool("immutable", false, "add immutable to Cache-Control")
	showHidden := flagSet.Bool("hidden", false, "serve dot-files")
	buffered := flagSet.Bool("buffered", false, "read files fully before sending")
	notFound := flagSet.String("not-found", "", "page served for missing paths, e.g. /404.html")
	rateLimit := flagSet.Float64("rate", 0, "requests per second allowed across the server")
	metricsPath := flagSet.String("metrics", "", "serve prometheus metrics at this path")
	logLevel := flagSet.String("log-level", "", "log level (trace, debug, info, warn, error)")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	changed := flagSet.Changed
	if changed("addr") {
		cfg.Addr = *addr
	}
	if changed("all") {
		cfg.ServeAll = *serveAll
	}
	if changed("index") {
		cfg.Index = *index
	}
	if changed("ext") {
		cfg.Extensions = *extensions
	}
	if changed("encodings") {
		cfg.Encodings = *encodings
	}
	if changed("max-age") {
		cfg.MaxAge = *maxAge
	}
	if changed("immutable") {
		cfg.Immutable = *immutable
	}
	if changed("hidden") {
		cfg.ShowHidden = *showHidden
	}
	if changed("buffered") {
		cfg.Buffered = *buffered
	}
	if changed("not-found") {
		cfg.NotFoundPath = *notFound
	}
	if changed("rate") {
		cfg.RateLimit = *rateLimit
	}
	if changed("metrics") {
		cfg.MetricsPath = *metricsPath
	}
	if changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		cfg.Root = rest[0]
	}

	setupLogging(cfg.Level())

	resolver, err := resolve.New(cfg.ResolveOptions(nil))
	if err != nil {
		return err
	}

	opts := &serve.ListenAndServeOpts{
		Addr:     cfg.Addr,
		ServeAll: cfg.ServeAll,
		Handler: &static.ServeFs{
			Resolver:         resolver,
			AllowFrame:       cfg.AllowFrame,
			HtmlNotFoundPath: cfg.NotFoundPath,
			Buffered:         cfg.Buffered,
			ChunkSize:        cfg.ChunkSize,
		},
	}
	if cfg.RateLimit > 0 {
		opts.Limit = &serve.LimitConfig{Rate: rate.Limit(cfg.RateLimit), Burst: cfg.RateBurst}
	}
	if cfg.MetricsPath != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Registry = reg
		opts.MetricsPath = cfg.MetricsPath
	}

	log.Info().Str("root", resolver.Root()).Strs("encodings", cfg.Encodings).Msg("serving")
	return serve.ListenAndServe(ctx, opts)
}

func runPrecompress(ctx context.Context, args []string) error {
	var opts precompress.Options
	var logLevel string

	flagSet := pflag.NewFlagSet("filesend precompress", pflag.ContinueOnError)
	flagSet.StringSliceVar(&opts.Encodings, "encodings", nil, "encodings to write (gzip, zstd)")
	flagSet.StringSliceVar(&opts.Extensions, "ext", nil, "extensions to compress (default: common text types)")
	flagSet.Int64Var(&opts.MinSize, "min-size", 256, "skip files smaller than this many bytes")
	flagSet.BoolVarP(&opts.Force, "force", "f", false, "rewrite up to date siblings")
	flagSet.BoolVar(&opts.IncludeHidden, "hidden", false, "include dot-files")
	flagSet.IntVarP(&opts.Concurrency, "jobs", "j", 4, "files compressed at once")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	setupLogging(level)

	opts.Root = "."
	if rest := flagSet.Args(); len(rest) > 0 {
		opts.Root = rest[0]
	}

	_, err = precompress.Run(ctx, opts)
	return err
}
