// Package serve hosts an http.Handler with h2c, rate limiting, metrics and access logging.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type ListenAndServeOpts struct {
	// Addr is the address to listen on.
	// If not passed, looks for the PORT env var or defaults to ":8080".
	Addr string

	// ServeAll hosts the server on all addresses (vs localhost) if Addr is unspecified.
	ServeAll bool

	// Handler is the handler to serve.
	// If nil, uses [http.DefaultServeMux].
	Handler http.Handler

	// Limit rate limits all requests. If nil, requests are not limited.
	Limit *LimitConfig

	// MetricsPath serves prometheus metrics from Registry, if both are set.
	MetricsPath string
	Registry    *prometheus.Registry

	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// addr decides the address to listen on.
func (opts *ListenAndServeOpts) addr() string {
	if opts.Addr != "" {
		return opts.Addr
	}

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port <= 0 {
		port = 8080
	}

	host := "localhost"
	if opts.ServeAll {
		host = ""
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (opts *ListenAndServeOpts) logger() zerolog.Logger {
	if opts.Logger != nil {
		return *opts.Logger
	}
	return log.Logger
}

// Handler wraps opts.Handler with logging, metrics and limiting, and allows unencrypted h2 traffic.
func Handler(opts *ListenAndServeOpts) http.Handler {
	if opts == nil {
		opts = &ListenAndServeOpts{}
	}

	handler := opts.Handler
	if handler == nil {
		handler = http.DefaultServeMux
	}

	r := chi.NewRouter()
	r.Use(
		hlog.NewHandler(opts.logger()),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
	)

	if opts.Registry != nil {
		m := newMetrics(opts.Registry)
		r.Use(m.middleware)
		if opts.MetricsPath != "" {
			r.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.With(withLimit(opts.Limit)).Handle("/*", handler)

	h2s := &http2.Server{}
	return h2c.NewHandler(r, h2s)
}

// ListenAndServe serves HTTP traffic in a sensibly default way, until ctx is done.
//
// By default, it serves on the env PORT or port 8080 and supports H2C.
func ListenAndServe(ctx context.Context, opts *ListenAndServeOpts) error {
	if opts == nil {
		opts = &ListenAndServeOpts{}
	}
	logger := opts.logger()

	s := &http.Server{
		Addr:    opts.addr(),
		Handler: Handler(opts),
	}

	eg, groupCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info().Str("addr", s.Addr).Msg("listening")
		err := s.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	eg.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return s.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
