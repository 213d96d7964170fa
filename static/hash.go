package static

import (
	"net/http"
	"regexp"
)

// foreverCacheControl is preset for content-addressed assets; it wins over the resolver's computed value.
const foreverCacheControl = "public, max-age=7776000, immutable"

var (
	// vite includes _ in the hashes
	reQueryHash = regexp.MustCompile(`^[_a-z0-9A-Z]{6,24}$`)
	reFileHash  = regexp.MustCompile(`(-|\.)([_a-z0-9A-Z]{6,24})\.`)
)

// GetQueryHash returns rawQuery if all of it looks like a long-term hash.
// Anything with a = or & is ignored.
func GetQueryHash(rawQuery string) string {
	if reQueryHash.MatchString(rawQuery) {
		return rawQuery
	}
	return ""
}

// GetFileHash looks for a hash as a suffix to a file (e.g, "foo-JK1llaO.js").
// This looks for a suffix starting with '-' or '.', but not the extension.
func GetFileHash(filename string) string {
	out := reFileHash.FindStringSubmatch(filename)
	if out == nil {
		return ""
	}
	return out[2]
}

// cacheForever reports whether r names content that can never change: a hashed filename or a hash-only query.
func cacheForever(r *http.Request) bool {
	return GetFileHash(r.URL.Path) != "" || GetQueryHash(r.URL.RawQuery) != ""
}
