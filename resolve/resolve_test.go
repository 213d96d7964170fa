package resolve_test

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samthor/filesend/resolve"
)

var fixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

// memFS is an in-memory filesystem keyed by absolute path.
type memFS struct {
	files map[string]resolve.FileInfo
}

func newMemFS(files map[string]int64, dirs ...string) *memFS {
	m := &memFS{files: map[string]resolve.FileInfo{}}
	for name, size := range files {
		m.files[name] = resolve.FileInfo{ModTime: fixedTime, Size: size}
	}
	for _, d := range dirs {
		m.files[d] = resolve.FileInfo{ModTime: fixedTime, IsDir: true}
	}
	return m
}

func (m *memFS) Exists(ctx context.Context, name string) bool {
	_, ok := m.files[name]
	return ok
}

func (m *memFS) Stat(ctx context.Context, name string) (resolve.FileInfo, error) {
	info, ok := m.files[name]
	if !ok {
		return resolve.FileInfo{}, fs.ErrNotExist
	}
	return info, nil
}

func newResolver(t *testing.T, opts resolve.Options) *resolve.Resolver {
	t.Helper()
	r, err := resolve.New(opts)
	require.NoError(t, err)
	return r
}

func srvFS() *memFS {
	return newMemFS(map[string]int64{
		"/srv/report.json":          18,
		"/srv/hello.txt":            5,
		"/srv/site/docs/index.html": 40,
		"/srv/site/index.html":      41,
		"/srv/.env":                 9,
		"/srv/.private/id_rsa.txt":  3,
		"/srv/a b.txt":              7,
		"/srv/100%.txt":             4,
		"/srv2/secret":              6,
	}, "/srv", "/srv/site", "/srv/site/docs", "/srv/empty", "/srv/.private")
}

func TestPrepareForbidden(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	for _, p := range []string{
		"/../etc/passwd",
		"../hello.txt",
		"a/../../x",
		"/../../srv/report.json",
		"/%2e%2e/etc/passwd",
		"%2e%2e%2fsrv2%2fsecret",
		"/docs/..%2f..%2fetc%2fpasswd",
	} {
		t.Run(p, func(t *testing.T) {
			_, err := r.Prepare(context.Background(), &resolve.Request{Path: p})
			assert.ErrorIs(t, err, resolve.ErrForbidden)
		})
	}
}

func TestPrepareReady(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	tests := []struct {
		path string
		want string
	}{
		{"/hello.txt", "/srv/hello.txt"},
		{"hello.txt", "/srv/hello.txt"},
		{"/docs/../report.json", "/srv/report.json"},
		{"//./hello.txt", "/srv/hello.txt"},
		{"/a+b.txt", "/srv/a b.txt"},
		{"/a%20b.txt", "/srv/a b.txt"},
		{"/100%25.txt", "/srv/100%.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := r.Prepare(context.Background(), &resolve.Request{Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Path)
			assert.Empty(t, res.EncodingSuffix)
		})
	}
}

func TestPrepareContentLength(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/report.json"})
	require.NoError(t, err)
	assert.Equal(t, "18", res.Header.Get("Content-Length"))
	assert.Equal(t, int64(18), res.Info.Size)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "Tue, 05 Mar 2024 14:07:09 GMT", res.Header.Get("Last-Modified"))
	assert.Empty(t, res.Header.Get("Cache-Control"))
	assert.Empty(t, res.Header.Get("Content-Encoding"))
	assert.Empty(t, res.Header.Get("Vary"))
}

func TestPrepareMalformed(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	_, err := r.Prepare(context.Background(), &resolve.Request{Path: "/%"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/%zz/hello.txt"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/hello.txt%00.png"})
	assert.ErrorIs(t, err, resolve.ErrBadRequest)
}

func TestPrepareEmptyPath(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	_, err := r.Prepare(context.Background(), &resolve.Request{Path: ""})
	var ce *resolve.ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.True(t, resolve.IsConfigError(err))
}

func TestPrepareExtensions(t *testing.T) {
	r := newResolver(t, resolve.Options{
		Root:       "/srv",
		FS:         srvFS(),
		Extensions: []string{"html", "json", ".txt"},
	})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/report"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/report.json", res.Path)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/hello"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/hello.txt", res.Path)

	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/missing"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	// paths with an extension never fall back
	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/report.xml"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
}

func TestPrepareExtensionsFirstWins(t *testing.T) {
	memfs := newMemFS(map[string]int64{
		"/srv/user.json": 1,
		"/srv/user.txt":  2,
	}, "/srv")
	r := newResolver(t, resolve.Options{
		Root:       "/srv",
		FS:         memfs,
		Extensions: []string{"html", "json", "txt"},
	})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/user"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/user.json", res.Path)
}

func TestPrepareIndex(t *testing.T) {
	memfs := srvFS()

	r := newResolver(t, resolve.Options{Root: "/srv/site", FS: memfs, Index: "index.html"})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/docs/"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/site/docs/index.html", res.Path)
	assert.Equal(t, "40", res.Header.Get("Content-Length"))

	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/site/index.html", res.Path)

	// formatting resolves directories requested without a trailing slash
	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/docs"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/site/docs/index.html", res.Path)

	r = newResolver(t, resolve.Options{Root: "/srv/site", FS: memfs, Index: "index.html", DisableFormat: true})
	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/docs"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/docs/"})
	assert.NoError(t, err)
}

func TestPrepareDirectoryWithoutIndex(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	for _, p := range []string{"/site", "/site/", "/", "/empty"} {
		_, err := r.Prepare(context.Background(), &resolve.Request{Path: p})
		assert.ErrorIs(t, err, resolve.ErrNotFound, "path=%s", p)
	}

	r = newResolver(t, resolve.Options{Root: "/srv", FS: srvFS(), Index: "index.html"})
	_, err := r.Prepare(context.Background(), &resolve.Request{Path: "/empty/"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/empty"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
}

func TestPrepareRootDirectory(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		index    string
		encoding bool
		ext      bool
		path     string
		want     string // empty for ErrNotFound
	}{
		{"root with encodings", "/srv", "", true, false, "/", ""},
		{"root dot with encodings", "/srv", "", true, false, "/.", ""},
		{"climb to root with encodings", "/srv", "", true, false, "/site/..", ""},
		{"root with extensions", "/srv", "", false, true, "/", ""},
		{"root dot with extensions", "/srv", "", false, true, "/.", ""},
		{"climb to root with extensions", "/srv", "", false, true, "/site/..", ""},
		{"root with both", "/srv", "", true, true, "/.", ""},
		{"index root", "/srv/site", "index.html", true, true, "/", "/srv/site/index.html"},
		{"index root dot", "/srv/site", "index.html", true, false, "/.", "/srv/site/index.html"},
		{"index climb to root", "/srv/site", "index.html", false, true, "/docs/..", "/srv/site/index.html"},
		{"index climb with both", "/srv/site", "index.html", true, true, "/docs/..", "/srv/site/index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := resolve.Options{Root: tt.root, FS: srvFS(), Index: tt.index}
			if tt.encoding {
				opts.Encodings = []string{"br", "gzip"}
			}
			if tt.ext {
				opts.Extensions = []string{"html"}
			}
			r := newResolver(t, opts)

			res, err := r.Prepare(context.Background(), &resolve.Request{Path: tt.path, AcceptEncoding: "br, gzip"})
			if tt.want == "" {
				assert.ErrorIs(t, err, resolve.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Path)
		})
	}
}

func TestPrepareHidden(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS()})

	_, hiddenErr := r.Prepare(context.Background(), &resolve.Request{Path: "/.env"})
	_, missingErr := r.Prepare(context.Background(), &resolve.Request{Path: "/nope.env"})
	assert.ErrorIs(t, hiddenErr, resolve.ErrNotFound)
	assert.Equal(t, missingErr, hiddenErr)

	_, err := r.Prepare(context.Background(), &resolve.Request{Path: "/.private/id_rsa.txt"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	_, err = r.Prepare(context.Background(), &resolve.Request{Path: "/%2eprivate/id_rsa.txt"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)

	r = newResolver(t, resolve.Options{Root: "/srv", FS: srvFS(), ShowHidden: true})
	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/.private/id_rsa.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/.private/id_rsa.txt", res.Path)
}

func precompressedFS() *memFS {
	return newMemFS(map[string]int64{
		"/srv/gzip.json":     18,
		"/srv/gzip.json.br":  22,
		"/srv/gzip.json.gz":  48,
		"/srv/gzip.json.zst": 30,
		"/srv/only.css":      100,
		"/srv/only.css.gz":   50,
		"/srv/page.html":     200,
		"/srv/page.html.br":  90,
	}, "/srv")
}

func TestPrepareEncoding(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		encodings []string
		accept    string
		wantEnc   string
		wantLen   string
	}{
		{"prefers brotli", "/gzip.json", []string{"gzip", "br"}, "gzip, deflate, br", "br", "22"},
		{"gzip only accepted", "/gzip.json", []string{"gzip", "br"}, "gzip, deflate, identity", "gzip", "48"},
		{"brotli refused by q", "/gzip.json", []string{"gzip", "br"}, "br;q=0, gzip", "gzip", "48"},
		{"zstd before gzip", "/gzip.json", []string{"gzip", "zstd"}, "gzip, zstd", "zstd", "30"},
		{"nothing accepted", "/gzip.json", []string{"gzip", "br"}, "deflate, identity", "", "18"},
		{"no header", "/gzip.json", []string{"gzip", "br"}, "", "", "18"},
		{"not enabled", "/gzip.json", nil, "gzip, br", "", "18"},
		{"brotli disabled", "/gzip.json", []string{"gzip"}, "br, gzip", "gzip", "48"},
		{"sibling missing", "/only.css", []string{"br", "gzip"}, "br", "", "100"},
		{"star", "/only.css", []string{"br", "gzip"}, "*", "gzip", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, resolve.Options{Root: "/srv", FS: precompressedFS(), Encodings: tt.encodings})
			res, err := r.Prepare(context.Background(), &resolve.Request{Path: tt.path, AcceptEncoding: tt.accept})
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnc, res.Encoding)
			assert.Equal(t, tt.wantEnc, res.Header.Get("Content-Encoding"))
			assert.Equal(t, tt.wantLen, res.Header.Get("Content-Length"))
			if tt.wantEnc != "" {
				assert.Equal(t, tt.path+res.EncodingSuffix, res.Path[len("/srv"):])
			}
			if len(tt.encodings) != 0 {
				assert.Equal(t, "Accept-Encoding", res.Header.Get("Vary"))
			}
		})
	}
}

func TestPrepareEncodingContentType(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: precompressedFS(), Encodings: []string{"br"}})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/gzip.json", AcceptEncoding: "br"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/gzip.json.br", res.Path)
	assert.Equal(t, ".br", res.EncodingSuffix)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
}

func TestPrepareIndexEncoding(t *testing.T) {
	memfs := newMemFS(map[string]int64{
		"/srv/site/index.html":    41,
		"/srv/site/index.html.br": 20,
	}, "/srv", "/srv/site")
	r := newResolver(t, resolve.Options{Root: "/srv", FS: memfs, Index: "index.html", Encodings: []string{"br"}})

	for _, p := range []string{"/site", "/site/"} {
		res, err := r.Prepare(context.Background(), &resolve.Request{Path: p, AcceptEncoding: "br"})
		require.NoError(t, err, "path=%s", p)
		assert.Equal(t, "/srv/site/index.html.br", res.Path)
		assert.Equal(t, "br", res.Encoding)
		assert.Equal(t, "20", res.Header.Get("Content-Length"))
		assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
	}

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/site"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/site/index.html", res.Path)
	assert.Empty(t, res.Encoding)
	assert.Equal(t, "41", res.Header.Get("Content-Length"))
}

func TestPrepareVary(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: precompressedFS(), Encodings: []string{"gzip"}})

	preset := http.Header{}
	preset.Set("Vary", "Origin")
	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/gzip.json", AcceptEncoding: "gzip", Header: preset})
	require.NoError(t, err)
	assert.Equal(t, []string{"Origin", "Accept-Encoding"}, res.Header.Values("Vary"))
	assert.Equal(t, []string{"Origin"}, preset.Values("Vary"))

	preset.Set("Vary", "origin, accept-encoding")
	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/gzip.json", Header: preset})
	require.NoError(t, err)
	assert.Equal(t, []string{"origin, accept-encoding"}, res.Header.Values("Vary"))

	preset.Set("Vary", "*")
	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/gzip.json", Header: preset})
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, res.Header.Values("Vary"))
}

func TestPrepareExtensionThenEncoding(t *testing.T) {
	r := newResolver(t, resolve.Options{
		Root:       "/srv",
		FS:         precompressedFS(),
		Encodings:  []string{"br", "gzip"},
		Extensions: []string{"html"},
	})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/page", AcceptEncoding: "br"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/page.html.br", res.Path)
	assert.Equal(t, "br", res.Encoding)
	assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
}

func TestPrepareCacheControl(t *testing.T) {
	tests := []struct {
		name      string
		maxAge    time.Duration
		immutable bool
		want      string
	}{
		{"max age", 5 * time.Second, false, "max-age=5"},
		{"fractional max age", 5233 * time.Millisecond, false, "max-age=5"},
		{"immutable", 5 * time.Second, true, "max-age=5, immutable"},
		{"only immutable", 0, true, ""},
		{"sub-second", 900 * time.Millisecond, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS(), MaxAge: tt.maxAge, Immutable: tt.immutable})
			res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/report.json"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Header.Get("Cache-Control"))
			_, present := res.Header["Cache-Control"]
			assert.Equal(t, tt.want != "", present)
		})
	}
}

func TestPrepareNoHeadersWhenMissing(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS(), MaxAge: 5 * time.Second, Immutable: true})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/2333"})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	assert.Nil(t, res)
}

func TestPreparePresetHeaders(t *testing.T) {
	r := newResolver(t, resolve.Options{Root: "/srv", FS: srvFS(), MaxAge: time.Hour})

	preset := http.Header{}
	preset.Set("Cache-Control", "no-cache")
	preset.Set("Last-Modified", "Thu, 01 Jan 1970 00:00:00 GMT")
	preset.Set("Content-Type", "text/x-custom")
	preset.Set("Content-Length", "999")

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/report.json", Header: preset})
	require.NoError(t, err)
	assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
	assert.Equal(t, "Thu, 01 Jan 1970 00:00:00 GMT", res.Header.Get("Last-Modified"))
	assert.Equal(t, "text/x-custom", res.Header.Get("Content-Type"))
	assert.Equal(t, "18", res.Header.Get("Content-Length"))

	// presets are never written to
	assert.Equal(t, "999", preset.Get("Content-Length"))
}

func TestPrepareSetHeaders(t *testing.T) {
	var calls int

	r := newResolver(t, resolve.Options{
		Root:   "/srv",
		FS:     srvFS(),
		MaxAge: time.Minute,
		SetHeaders: func(req *resolve.Request, p string, info resolve.FileInfo, h http.Header) {
			calls++
			assert.Equal(t, "ctx", req.Context)
			assert.Equal(t, "/srv/hello.txt", p)
			assert.Equal(t, int64(5), info.Size)
			h.Set("X-Custom", "yes")
			h.Set("Cache-Control", "private")
			h.Set("Content-Length", "1")
		},
	})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/hello.txt", Context: "ctx"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "yes", res.Header.Get("X-Custom"))
	assert.Equal(t, "private", res.Header.Get("Cache-Control"))
	assert.Equal(t, "5", res.Header.Get("Content-Length"))
}

func TestPrepareIdempotent(t *testing.T) {
	r := newResolver(t, resolve.Options{
		Root:      "/srv",
		FS:        precompressedFS(),
		Encodings: []string{"br", "gzip"},
		MaxAge:    time.Hour,
		Immutable: true,
	})

	req := &resolve.Request{Path: "/gzip.json", AcceptEncoding: "gzip, br"}
	a, err := r.Prepare(context.Background(), req)
	require.NoError(t, err)
	b, err := r.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts resolve.Options
	}{
		{"unknown encoding", resolve.Options{Root: "/srv", Encodings: []string{"deflate"}}},
		{"empty extension", resolve.Options{Root: "/srv", Extensions: []string{""}}},
		{"extension with separator", resolve.Options{Root: "/srv", Extensions: []string{"html/../x"}}},
		{"index with separator", resolve.Options{Root: "/srv", Index: "a/index.html"}},
		{"negative max age", resolve.Options{Root: "/srv", MaxAge: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolve.New(tt.opts)
			assert.True(t, resolve.IsConfigError(err), "got %v", err)
		})
	}
}

func TestNewDefaultRoot(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	r := newResolver(t, resolve.Options{})
	assert.Equal(t, wd, r.Root())

	r = newResolver(t, resolve.Options{Root: "testdata/../."})
	assert.Equal(t, wd, r.Root())
}

func TestPrepareOS(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "user.json"), []byte(`{ "name": "tobi" }`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("just some plain text\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "world"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "world", "index.html"), []byte("<p>html index</p>"), 0644))

	modTime := time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "user.json"), modTime, modTime))

	r := newResolver(t, resolve.Options{Root: root, Index: "index.html"})

	res, err := r.Prepare(context.Background(), &resolve.Request{Path: "/user.json"})
	require.NoError(t, err)
	assert.Equal(t, "18", res.Header.Get("Content-Length"))
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "Mon, 01 Jun 2020 12:00:00 GMT", res.Header.Get("Last-Modified"))

	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "/README"})
	require.NoError(t, err)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/plain")

	res, err = r.Prepare(context.Background(), &resolve.Request{Path: "world"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "world", "index.html"), res.Path)

	// absolute paths are joined under the root, not served from where they point
	_, err = r.Prepare(context.Background(), &resolve.Request{Path: filepath.Join(root, "user.json")})
	assert.ErrorIs(t, err, resolve.ErrNotFound)
}

func TestPrepareCanceled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))

	r := newResolver(t, resolve.Options{Root: root})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Prepare(ctx, &resolve.Request{Path: "/a.txt"})
	assert.True(t, errors.Is(err, resolve.ErrNotFound))
}
