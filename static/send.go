package static

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/samthor/filesend/resolve"
)

// DefaultChunkSize is the read size used by Stream when none is given.
const DefaultChunkSize = 4 * 1024

// commit copies the resolved headers and writes status.
func commit(w http.ResponseWriter, res *resolve.Result, status int) {
	head := w.Header()
	for h, values := range res.Header {
		head[h] = append([]string(nil), values...)
	}
	w.WriteHeader(status)
}

// Send reads the whole resolved file and then writes it.
// If the file can't be read, a 404 is written instead and the error returned.
func Send(w http.ResponseWriter, r *http.Request, res *resolve.Result) error {
	return send(w, r, res, http.StatusOK)
}

func send(w http.ResponseWriter, r *http.Request, res *resolve.Result, status int) error {
	if r.Method == http.MethodHead {
		commit(w, res, status)
		return nil
	}

	b, err := os.ReadFile(res.Path)
	if err != nil {
		// removed or replaced since it was resolved
		http.NotFound(w, r)
		return fmt.Errorf("static: reading %s: %w", res.Path, err)
	}

	// the file may have changed since it was probed
	res.Header.Set("Content-Length", strconv.Itoa(len(b)))
	commit(w, res, status)

	_, err = w.Write(b)
	return err
}

// Stream writes the resolved file in chunks of chunkSize bytes.
// If the file can't be opened, a 404 is written instead and the error returned.
func Stream(w http.ResponseWriter, r *http.Request, res *resolve.Result, chunkSize int) error {
	return stream(w, r, res, chunkSize, http.StatusOK)
}

func stream(w http.ResponseWriter, r *http.Request, res *resolve.Result, chunkSize, status int) error {
	if r.Method == http.MethodHead {
		commit(w, res, status)
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(res.Path)
	if err != nil {
		http.NotFound(w, r)
		return fmt.Errorf("static: opening %s: %w", res.Path, err)
	}
	defer f.Close()

	commit(w, res, status)

	// never write more than the Content-Length already sent
	_, err = io.CopyBuffer(writerOnly{w}, io.LimitReader(f, res.Info.Size), make([]byte, chunkSize))
	return err
}

// writerOnly hides any ReadFrom on the ResponseWriter, so CopyBuffer honors the chunk size.
type writerOnly struct {
	io.Writer
}
