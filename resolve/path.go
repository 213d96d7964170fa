package resolve

import (
	"net/url"
	"path/filepath"
	"strings"
)

const hiddenMarker = '.'

func isSep(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// stripVolume removes any volume name and leading separators, so the path can be joined under a root.
func stripVolume(p string) string {
	p = p[len(filepath.VolumeName(p)):]
	return strings.TrimLeftFunc(p, isSep)
}

// climbsAbove walks p as a standalone path from an anchor and reports whether any ".." leaves it.
func climbsAbove(p string) bool {
	depth := 0
	for _, seg := range strings.FieldsFunc(p, isSep) {
		switch seg {
		case ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}

// within reports whether the clean absolute path p is root or inside it.
func within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// isHidden reports whether any segment of p below root starts with the hidden marker.
func isHidden(root, p string) bool {
	rel := strings.TrimPrefix(p, root)
	for _, seg := range strings.FieldsFunc(rel, isSep) {
		if seg[0] == hiddenMarker {
			return true
		}
	}
	return false
}

// resolvePath canonicalizes raw against the root, returning an absolute candidate inside it.
func (r *Resolver) resolvePath(raw string) (string, error) {
	if raw == "" {
		return "", &ConfigError{Msg: "request path can't be empty"}
	}

	// catch traversal phrased against the path itself, before joining
	if strings.Contains(raw, "..") && climbsAbove(stripVolume(raw)) {
		return "", ErrForbidden
	}

	p := raw
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		p = stripVolume(p)
	}

	// join, then clean: never the other way around
	joined := filepath.Join(r.root, filepath.FromSlash(p))
	if !within(r.root, joined) {
		return "", ErrForbidden
	}

	// decode only after cleaning, as decoding may introduce separators
	rel := joined[len(r.root):]
	if decoded, err := url.QueryUnescape(rel); err == nil {
		rel = decoded
	}
	if strings.IndexByte(rel, 0) >= 0 {
		return "", ErrBadRequest
	}

	candidate := filepath.Join(r.root, rel)
	if !within(r.root, candidate) {
		return "", ErrForbidden
	}

	if r.opts.Index != "" && strings.HasSuffix(raw, "/") {
		var err error
		candidate, err = r.child(candidate, r.opts.Index)
		if err != nil {
			return "", err
		}
	}

	if !r.opts.ShowHidden && isHidden(r.root, candidate) {
		return "", ErrNotFound
	}
	return candidate, nil
}

// child joins name under dir and checks the result is still inside the root.
func (r *Resolver) child(dir, name string) (string, error) {
	return r.contain(filepath.Join(dir, name))
}

// contain checks that a mutated candidate is still inside the root.
func (r *Resolver) contain(p string) (string, error) {
	if !within(r.root, filepath.Clean(p)) {
		return "", ErrForbidden
	}
	return p, nil
}
