package resolve

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Encoding is a precompressed on-disk variant of a file, stored as a sibling with Suffix.
type Encoding struct {
	Name   string
	Suffix string
}

var (
	Brotli = Encoding{Name: "br", Suffix: ".br"}
	Zstd   = Encoding{Name: "zstd", Suffix: ".zst"}
	Gzip   = Encoding{Name: "gzip", Suffix: ".gz"}
)

// encodingPriority is the order in which variants are tried, regardless of configuration order.
var encodingPriority = []Encoding{Brotli, Zstd, Gzip}

// LookupEncoding finds a known encoding by its Content-Encoding name.
func LookupEncoding(name string) (Encoding, bool) {
	for _, e := range encodingPriority {
		if e.Name == name {
			return e, true
		}
	}
	return Encoding{}, false
}

// acceptedEncodings parses an Accept-Encoding header into the set of acceptable codings.
// Codings with q=0 are excluded. A "*" entry is stored as-is.
func acceptedEncodings(header string) map[string]bool {
	if header == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(part, ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out[name] = qualityOf(params) > 0
	}
	return out
}

func qualityOf(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return q
	}
	return 1
}

func accepts(accepted map[string]bool, name string) bool {
	if ok, found := accepted[name]; found {
		return ok
	}
	return accepted["*"]
}

// hasExt reports whether the final segment of p has an extension.
func hasExt(p string) bool {
	return strings.ContainsRune(filepath.Base(p), '.')
}

// probeFirst probes all candidates concurrently and returns the index of the first that exists, or -1.
func (r *Resolver) probeFirst(ctx context.Context, candidates []string) int {
	if len(candidates) == 0 {
		return -1
	}
	found := make([]bool, len(candidates))

	eg, groupCtx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		eg.Go(func() error {
			found[i] = r.fs.Exists(groupCtx, c)
			return nil
		})
	}
	eg.Wait()

	for i, ok := range found {
		if ok {
			return i
		}
	}
	return -1
}

// sibling returns p+suffix, or false if that would leave the root (p is the root itself).
func (r *Resolver) sibling(p, suffix string) (string, bool) {
	c := p + suffix
	return c, within(r.root, filepath.Clean(c))
}

// selectEncoding picks the highest priority precompressed sibling that is enabled, accepted and exists.
func (r *Resolver) selectEncoding(ctx context.Context, p, acceptEncoding string) (string, Encoding) {
	accepted := acceptedEncodings(acceptEncoding)
	if len(accepted) == 0 || len(r.encodings) == 0 {
		return p, Encoding{}
	}

	var options []Encoding
	var candidates []string
	for _, e := range r.encodings {
		if !accepts(accepted, e.Name) {
			continue
		}
		if c, ok := r.sibling(p, e.Suffix); ok {
			options = append(options, e)
			candidates = append(candidates, c)
		}
	}

	if i := r.probeFirst(ctx, candidates); i >= 0 {
		return candidates[i], options[i]
	}
	return p, Encoding{}
}

// selectExtension tries each configured extension on an extensionless path, in order.
// If none match p is returned unchanged, and the probe will fail later.
func (r *Resolver) selectExtension(ctx context.Context, p string) (string, bool) {
	if len(r.opts.Extensions) == 0 || hasExt(p) {
		return p, false
	}

	candidates := make([]string, 0, len(r.opts.Extensions))
	for _, ext := range r.opts.Extensions {
		if c, ok := r.sibling(p, ext); ok {
			candidates = append(candidates, c)
		}
	}

	if i := r.probeFirst(ctx, candidates); i >= 0 {
		return candidates[i], true
	}
	return p, false
}

// selectVariant chooses the file to serve for the resolved candidate p.
func (r *Resolver) selectVariant(ctx context.Context, p, acceptEncoding string) (string, Encoding) {
	out, enc := r.selectEncoding(ctx, p, acceptEncoding)
	if enc.Name != "" {
		return out, enc
	}

	out, ok := r.selectExtension(ctx, p)
	if !ok {
		return out, Encoding{}
	}

	// the fallback found a real file, so it may have its own precompressed siblings
	return r.selectEncoding(ctx, out, acceptEncoding)
}
