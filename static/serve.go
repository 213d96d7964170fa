package static

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/samthor/filesend/resolve"
)

// StatusFor maps a resolve error to the HTTP status it should be reported as.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, resolve.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, resolve.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolve.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c *ServeFs) logger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	if c.Logger != nil {
		return c.Logger
	}
	return &log.Logger
}

func (c *ServeFs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := c.logger(r)

	if c.Resolver == nil {
		logger.Error().Msg("ServeFs has no Resolver")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// resolve decodes the path itself, so pass the escaped form
	p := c.AddPrefix + r.URL.EscapedPath()

	forever := cacheForever(r)
	preset := make(http.Header)
	if forever {
		preset.Set("Cache-Control", foreverCacheControl)
	}

	res, err := c.Resolver.Prepare(r.Context(), &resolve.Request{
		Path:           p,
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		Header:         preset,
		Context:        r,
	})
	status := http.StatusOK
	if errors.Is(err, resolve.ErrNotFound) {
		if page := c.notFoundPage(r); page != nil {
			res, err = page, nil
			status = http.StatusNotFound
			forever = false
		}
	}
	if err != nil {
		code := StatusFor(err)
		if code == http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", p).Msg("could not resolve")
		}
		http.Error(w, http.StatusText(code), code)
		return
	}

	// frames (default deny)
	if !c.AllowFrame {
		res.Header.Set("X-Frame-Options", "deny")
	}

	ct := res.Header.Get("Content-Type")
	isHtml := ct == "text/html" || strings.HasPrefix(ct, "text/html;")

	if c.UpdateHeader != nil {
		c.UpdateHeader(res.Header, ServeInfo{
			Result:       res,
			Is404:        status == http.StatusNotFound,
			IsHtml:       isHtml,
			IsHead:       r.Method == http.MethodHead,
			CacheForever: forever,
		})
	}

	if c.Buffered {
		err = send(w, r, res, status)
	} else {
		err = stream(w, r, res, c.ChunkSize, status)
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", p).Msg("couldn't write bytes")
	}
}

// notFoundPage resolves HtmlNotFoundPath if r looks like a request for a page, or returns nil.
func (c *ServeFs) notFoundPage(r *http.Request) *resolve.Result {
	if c.HtmlNotFoundPath == "" {
		return nil
	}
	p := r.URL.Path
	if !strings.HasSuffix(p, "/") && path.Ext(p) != "" {
		return nil
	}

	preset := make(http.Header)
	preset.Set("Cache-Control", "no-cache")

	res, err := c.Resolver.Prepare(r.Context(), &resolve.Request{
		Path:           c.HtmlNotFoundPath,
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
		Header:         preset,
		Context:        r,
	})
	if err != nil {
		c.logger(r).Warn().Err(err).Str("path", c.HtmlNotFoundPath).Msg("missing not found page")
		return nil
	}
	return res
}
