// Package uploadlimit enforces the maximum accepted upload size while the
// body is streamed, so oversized uploads are never buffered in memory.
package uploadlimit

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
	"github.com/dalemusser/inclouds/internal/app/system/humanize"
)

// DefaultMaxBytes is the default upload limit: 1 GiB.
const DefaultMaxBytes int64 = 1 * 1024 * 1024 * 1024

// multipartOverhead is the allowance for form fields and part headers on
// top of the file bytes themselves.
const multipartOverhead = 1 << 20

// TooLarge returns the validation error reported for an oversized upload.
func TooLarge(name string, limit int64) error {
	return fserr.Validation("upload", name,
		fmt.Sprintf("File is larger than the %s upload limit.", humanize.Bytes(limit)))
}

// Reader passes through at most limit bytes. Reading past the limit
// returns the TooLarge validation error instead of data.
type Reader struct {
	r     io.Reader
	name  string
	limit int64
	read  int64
}

// NewReader wraps r. Exactly limit bytes are accepted.
func NewReader(r io.Reader, name string, limit int64) *Reader {
	return &Reader{
		r:     io.LimitReader(r, limit+1),
		name:  name,
		limit: limit,
	}
}

func (l *Reader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return 0, TooLarge(l.name, l.limit)
	}
	return n, err
}

// N returns the number of bytes accepted so far.
func (l *Reader) N() int64 {
	return l.read
}

// CheckRequest rejects a request whose declared Content-Length already
// exceeds limit plus overhead for multipart framing. Requests without a
// length are left to the streaming Reader.
func CheckRequest(r *http.Request, limit int64) error {
	if r.ContentLength > 0 && r.ContentLength > limit+multipartOverhead {
		return TooLarge("", limit)
	}
	return nil
}

// Middleware caps multipart request bodies before anything else reads
// them. It runs ahead of CSRF checking, which may parse the form.
func Middleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				next.ServeHTTP(w, r)
				return
			}
			if err := CheckRequest(r, limit); err != nil {
				http.Error(w, fserr.Message(err), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
			next.ServeHTTP(w, r)
		})
	}
}
