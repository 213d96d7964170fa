package resolve

import (
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultTypeByName guesses a Content-Type from the extension of p, sniffing the file's contents if that fails.
func DefaultTypeByName(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return ""
	}
	return m.String()
}

// CacheControl returns the Cache-Control value for maxAge, or "" if none should be sent.
// Immutable on its own never produces a header.
func CacheControl(maxAge time.Duration, immutable bool) string {
	seconds := int64(maxAge / time.Second)
	if seconds <= 0 {
		return ""
	}
	directives := []string{"max-age=" + strconv.FormatInt(seconds, 10)}
	if immutable {
		directives = append(directives, "immutable")
	}
	return strings.Join(directives, ", ")
}

// hasToken reports whether any comma-separated element of values is token (or "*").
func hasToken(values []string, token string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "*" || strings.EqualFold(part, token) {
				return true
			}
		}
	}
	return false
}

// buildHeader derives response headers for the final path.
// Caller presets and the SetHeaders hook win over defaults, except for Content-Length.
func (r *Resolver) buildHeader(req *Request, p string, enc Encoding, info FileInfo) http.Header {
	h := make(http.Header)
	for k, v := range req.Header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}

	if enc.Name != "" {
		h.Set("Content-Encoding", enc.Name)
	}
	if len(r.encodings) != 0 && !hasToken(h.Values("Vary"), "Accept-Encoding") {
		h.Add("Vary", "Accept-Encoding")
	}

	if r.opts.SetHeaders != nil {
		r.opts.SetHeaders(req, p, info, h)
	}

	h.Set("Content-Length", strconv.FormatInt(info.Size, 10))

	if h.Get("Last-Modified") == "" {
		h.Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	}

	if h.Get("Cache-Control") == "" {
		if cc := CacheControl(r.opts.MaxAge, r.opts.Immutable); cc != "" {
			h.Set("Cache-Control", cc)
		}
	}

	if h.Get("Content-Type") == "" {
		// infer from the name the client will see, not the stored variant
		if ct := r.typeByName(strings.TrimSuffix(p, enc.Suffix)); ct != "" {
			h.Set("Content-Type", ct)
		}
	}

	return h
}
