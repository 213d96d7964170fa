package resolve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrForbidden is returned when a request path escapes the root.
	ErrForbidden = errors.New("resolve: forbidden")

	// ErrNotFound is returned for missing files, directories without an index, hidden paths and failed probes.
	// Hidden paths are reported the same way as missing ones.
	ErrNotFound = errors.New("resolve: not found")

	// ErrBadRequest is returned when a decoded path can never name a file (e.g., contains NUL).
	ErrBadRequest = errors.New("resolve: bad request")
)

// ConfigError describes invalid caller-supplied options or arguments.
// This is a programmer error, not a request outcome.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "resolve: config: " + e.Msg
}

// FileInfo is the metadata of a probed file.
type FileInfo struct {
	ModTime time.Time
	Size    int64
	IsDir   bool
}

// HeaderFunc may update headers before defaults are computed.
// It is passed the final path and its metadata.
type HeaderFunc func(req *Request, path string, info FileInfo, h http.Header)

// Request is a single resolution request.
type Request struct {
	// Path is the raw, possibly percent-encoded, request path.
	Path string

	// AcceptEncoding is the client's raw Accept-Encoding header.
	AcceptEncoding string

	// Header contains headers preset by the caller.
	// Any Content-Type, Last-Modified or Cache-Control here wins over computed values.
	Header http.Header

	// Context is passed through to SetHeaders, e.g., the *http.Request being served.
	Context any
}

// Result is a successfully resolved file, ready to be delivered.
type Result struct {
	// Path is the absolute path of the file to serve.
	Path string

	// EncodingSuffix is the suffix of the chosen precompressed variant (e.g., ".br"), or empty.
	EncodingSuffix string

	// Encoding is the Content-Encoding of the chosen variant, or empty.
	Encoding string

	Header http.Header
	Info   FileInfo
}

// Options configure a Resolver. They are validated once by New.
type Options struct {
	// Root is the directory outside of which nothing is served.
	// If empty, the working directory is used.
	Root string

	// Index is the filename served for directory requests, e.g., "index.html".
	Index string

	// ShowHidden allows serving paths with segments starting with ".".
	ShowHidden bool

	// DisableFormat stops directories requested without a trailing slash from resolving to Index.
	DisableFormat bool

	// Encodings lists the precompressed variants that may be served, by Content-Encoding name ("br", "zstd", "gzip").
	// Order does not matter; variants are always tried in a fixed priority.
	Encodings []string

	// Extensions are tried in order when the requested path has no extension.
	// A leading "." is optional.
	Extensions []string

	// MaxAge is emitted as Cache-Control max-age, truncated to whole seconds.
	MaxAge time.Duration

	// Immutable adds the immutable directive. It has no effect without MaxAge.
	Immutable bool

	// SetHeaders is an optional hook run before default headers are computed.
	SetHeaders HeaderFunc

	// FS is the filesystem probed. If nil, the OS filesystem is used.
	FS FS

	// TypeByName guesses a Content-Type from a file path.
	// If nil, DefaultTypeByName is used.
	TypeByName func(path string) string

	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// FS is the filesystem collaborator used to probe candidate paths.
// Implementations may block; they should give up when ctx is done.
type FS interface {
	// Exists reports whether anything exists at name.
	Exists(ctx context.Context, name string) bool

	// Stat returns metadata for name.
	Stat(ctx context.Context, name string) (FileInfo, error)
}
