package static

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/samthor/filesend/resolve"
)

// ServeInfo is passed to UpdateHeader to control header generation.
type ServeInfo struct {
	*resolve.Result
	Is404        bool
	IsHtml       bool
	IsHead       bool
	CacheForever bool
}

// ServeFs implements http.Handler, serving files found by Resolver.
type ServeFs struct {
	Resolver *resolve.Resolver

	// AddPrefix is added to all request paths before they are resolved.
	AddPrefix string

	// AllowFrame controls the X-Frame-Options header.
	AllowFrame bool

	// HtmlNotFoundPath is resolved and served with a 404 status if we think a missing path is a page (a trailing slash or no extension).
	// It does not have AddPrefix applied to it.
	HtmlNotFoundPath string

	// Buffered reads whole files before writing them. Otherwise files are streamed in chunks of ChunkSize.
	Buffered bool

	// ChunkSize is the streaming read size. Defaults to DefaultChunkSize.
	ChunkSize int

	// UpdateHeader may be provided to update the headers of returned responses. Useful for CSP.
	UpdateHeader func(http.Header, ServeInfo)

	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}
