// Package resolve maps request paths to files under a root, choosing precompressed or extension variants and computing response headers.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resolver resolves requests against fixed Options.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	opts       Options
	root       string
	encodings  []Encoding
	fs         FS
	typeByName func(string) string
	log        zerolog.Logger
}

// New validates opts and returns a Resolver.
// Invalid options are reported as a *ConfigError.
func New(opts Options) (*Resolver, error) {
	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve: getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("bad root %q: %v", opts.Root, err)}
	}

	if strings.ContainsFunc(opts.Index, isSep) || opts.Index == "." || opts.Index == ".." {
		return nil, &ConfigError{Msg: fmt.Sprintf("index must be a plain filename, got %q", opts.Index)}
	}

	exts := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." || strings.ContainsFunc(ext, isSep) {
			return nil, &ConfigError{Msg: fmt.Sprintf("extensions must be non-empty names without separators, got %q", ext)}
		}
		exts = append(exts, ext)
	}
	opts.Extensions = exts

	enabled := make(map[string]bool)
	for _, name := range opts.Encodings {
		if _, ok := LookupEncoding(name); !ok {
			return nil, &ConfigError{Msg: fmt.Sprintf("unknown encoding %q", name)}
		}
		enabled[name] = true
	}
	var encodings []Encoding
	for _, e := range encodingPriority {
		if enabled[e.Name] {
			encodings = append(encodings, e)
		}
	}

	if opts.MaxAge < 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("max age must not be negative, got %v", opts.MaxAge)}
	}

	r := &Resolver{
		opts:       opts,
		root:       root,
		encodings:  encodings,
		fs:         opts.FS,
		typeByName: opts.TypeByName,
	}
	if r.fs == nil {
		r.fs = OSFS{}
	}
	if r.typeByName == nil {
		r.typeByName = DefaultTypeByName
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	r.log = logger.With().Str("root", root).Logger()

	return r, nil
}

// Root returns the absolute root this Resolver serves from.
func (r *Resolver) Root() string {
	return r.root
}

// Prepare resolves req to a file ready to be delivered.
// It returns ErrForbidden, ErrNotFound, ErrBadRequest or a *ConfigError on failure.
func (r *Resolver) Prepare(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, &ConfigError{Msg: "nil request"}
	}

	res, err := r.prepare(ctx, req)
	if err != nil {
		r.log.Debug().Err(err).Str("path", req.Path).Msg("not resolved")
		return nil, err
	}
	r.log.Debug().
		Str("path", req.Path).
		Str("file", res.Path).
		Str("encoding", res.Encoding).
		Int64("size", res.Info.Size).
		Msg("resolved")
	return res, nil
}

func (r *Resolver) prepare(ctx context.Context, req *Request) (*Result, error) {
	candidate, err := r.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}

	selected, enc := r.selectVariant(ctx, candidate, req.AcceptEncoding)

	final, info, err := r.probe(ctx, selected)
	if err != nil {
		return nil, err
	}
	if final != selected {
		// a directory resolved to its index, which has its own siblings
		enc = Encoding{}
		if variant, e := r.selectEncoding(ctx, final, req.AcceptEncoding); e.Name != "" {
			if vinfo, err := r.fs.Stat(ctx, variant); err == nil && !vinfo.IsDir {
				final, enc, info = variant, e, vinfo
			}
		}
	}

	return &Result{
		Path:           final,
		EncodingSuffix: enc.Suffix,
		Encoding:       enc.Name,
		Header:         r.buildHeader(req, final, enc, info),
		Info:           info,
	}, nil
}

// IsConfigError reports whether err is a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
