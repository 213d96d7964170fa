package resolve

import (
	"context"
)

// probe stats the selected path. Directories resolve to their index when allowed.
// Every failure is reported as ErrNotFound, whatever the underlying cause.
func (r *Resolver) probe(ctx context.Context, p string) (string, FileInfo, error) {
	info, err := r.fs.Stat(ctx, p)
	if err != nil {
		r.log.Trace().Err(err).Str("path", p).Msg("stat failed")
		return "", FileInfo{}, ErrNotFound
	}
	if !info.IsDir {
		return p, info, nil
	}

	// directory listings are never served
	if r.opts.DisableFormat || r.opts.Index == "" {
		return "", FileInfo{}, ErrNotFound
	}

	indexPath, err := r.child(p, r.opts.Index)
	if err != nil {
		return "", FileInfo{}, err
	}
	if !r.opts.ShowHidden && isHidden(r.root, indexPath) {
		return "", FileInfo{}, ErrNotFound
	}

	info, err = r.fs.Stat(ctx, indexPath)
	if err != nil || info.IsDir {
		return "", FileInfo{}, ErrNotFound
	}
	return indexPath, info, nil
}
