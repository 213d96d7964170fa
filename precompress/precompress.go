// Package precompress writes compressed siblings of files, so they can be served as precompressed variants.
package precompress

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/samthor/filesend/resolve"
)

// DefaultExtensions are compressed when Options.Extensions is empty.
var DefaultExtensions = []string{
	".html", ".htm", ".css", ".js", ".mjs", ".json", ".map", ".svg", ".txt", ".xml", ".md", ".wasm", ".csv",
}

// Options control a precompression run.
type Options struct {
	Root string

	// Encodings to write, by Content-Encoding name. Only "gzip" and "zstd" can be written.
	// If empty, both are written.
	Encodings []string

	// Extensions of files to compress.
	Extensions []string

	// MinSize skips files smaller than this many bytes.
	MinSize int64

	// Force rewrites siblings even if they are newer than their source.
	Force bool

	// IncludeHidden also compresses hidden files and the contents of hidden directories.
	IncludeHidden bool

	// Concurrency bounds the files compressed at once. Defaults to 4.
	Concurrency int

	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// Stats summarizes a run.
type Stats struct {
	Files   int   // source files considered
	Written int   // siblings written
	Skipped int   // siblings that were up to date or not smaller than the source
	InSize  int64 // bytes of source for written siblings
	OutSize int64 // bytes of written siblings
}

type compressor struct {
	enc       resolve.Encoding
	newWriter func(io.Writer) (io.WriteCloser, error)
}

var compressors = map[string]compressor{
	resolve.Gzip.Name: {
		enc: resolve.Gzip,
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.BestCompression)
		},
	},
	resolve.Zstd.Name: {
		enc: resolve.Zstd,
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		},
	},
}

// Run walks opts.Root and writes compressed siblings for every matching file.
func Run(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats

	names := opts.Encodings
	if len(names) == 0 {
		names = []string{resolve.Gzip.Name, resolve.Zstd.Name}
	}
	var use []compressor
	for _, name := range names {
		c, ok := compressors[name]
		if !ok {
			return stats, fmt.Errorf("precompress: can't write encoding %q", name)
		}
		use = append(use, c)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[strings.ToLower(ext)] = true
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("root", opts.Root).Logger()

	var lock sync.Mutex
	eg, groupCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	walkErr := filepath.WalkDir(opts.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := groupCtx.Err(); err != nil {
			return err
		}

		if p != opts.Root && !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isVariant(p) || !extSet[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() < opts.MinSize {
			return nil
		}

		lock.Lock()
		stats.Files++
		lock.Unlock()

		eg.Go(func() error {
			for _, c := range use {
				written, outSize, err := compressFile(p, info, c, opts.Force)
				if err != nil {
					return err
				}

				lock.Lock()
				if written {
					stats.Written++
					stats.InSize += info.Size()
					stats.OutSize += outSize
				} else {
					stats.Skipped++
				}
				lock.Unlock()

				if written {
					logger.Debug().
						Str("file", p).
						Str("encoding", c.enc.Name).
						Str("from", humanize.Bytes(uint64(info.Size()))).
						Str("to", humanize.Bytes(uint64(outSize))).
						Msg("compressed")
				}
			}
			return nil
		})
		return nil
	})

	err := eg.Wait()
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return stats, err
	}

	logger.Info().
		Int("files", stats.Files).
		Int("written", stats.Written).
		Int("skipped", stats.Skipped).
		Str("saved", humanize.Bytes(uint64(max(stats.InSize-stats.OutSize, 0)))).
		Msg("precompressed")
	return stats, nil
}

// isVariant reports whether p is itself a compressed sibling.
func isVariant(p string) bool {
	for _, e := range []resolve.Encoding{resolve.Brotli, resolve.Zstd, resolve.Gzip} {
		if strings.HasSuffix(p, e.Suffix) {
			return true
		}
	}
	return false
}

// compressFile writes p+suffix for one encoding, unless an up to date sibling exists.
// Siblings that would not be smaller than the source are not kept.
func compressFile(p string, info fs.FileInfo, c compressor, force bool) (bool, int64, error) {
	target := p + c.enc.Suffix

	if !force {
		if st, err := os.Stat(target); err == nil && !st.ModTime().Before(info.ModTime()) {
			return false, 0, nil
		}
	}

	src, err := os.Open(p)
	if err != nil {
		return false, 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return false, 0, err
	}
	defer os.Remove(tmp.Name())

	w, err := c.newWriter(tmp)
	if err != nil {
		tmp.Close()
		return false, 0, err
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		tmp.Close()
		return false, 0, fmt.Errorf("precompress: compressing %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return false, 0, err
	}

	st, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return false, 0, err
	}
	if err := tmp.Close(); err != nil {
		return false, 0, err
	}

	if st.Size() >= info.Size() {
		// not worth serving
		os.Remove(target)
		return false, 0, nil
	}

	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return false, 0, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return false, 0, err
	}
	return true, st.Size(), nil
}
