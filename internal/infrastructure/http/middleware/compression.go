package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// CompressionConfig configures response compression
type CompressionConfig struct {
	BrotliLevel  int // 0-11
	GzipLevel    int // 1-9
	MinSizeBytes int
}

// DefaultCompressionConfig returns the levels used by the API server
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		BrotliLevel:  brotli.DefaultCompression,
		GzipLevel:    gzip.DefaultCompression,
		MinSizeBytes: 1024,
	}
}

var compressibleTypes = []string{
	"application/json",
	"text/plain",
	"text/csv",
}

// Compression buffers responses and encodes them with brotli or gzip when
// the client accepts it. Small bodies and other content types pass through.
func Compression(cfg CompressionConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			buf := &bufferedWriter{header: w.Header(), status: http.StatusOK}
			next.ServeHTTP(buf, r)

			w.Header().Add("Vary", "Accept-Encoding")
			body := buf.body.Bytes()
			if len(body) < cfg.MinSizeBytes || !compressible(w.Header().Get("Content-Type")) {
				w.WriteHeader(buf.status)
				_, _ = w.Write(body)
				return
			}

			encoded, err := encode(encoding, body, cfg)
			if err != nil {
				w.WriteHeader(buf.status)
				_, _ = w.Write(body)
				return
			}
			w.Header().Set("Content-Encoding", encoding)
			w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
			w.WriteHeader(buf.status)
			_, _ = w.Write(encoded)
		})
	}
}

// negotiateEncoding picks br over gzip. Entries with q=0 are refused.
func negotiateEncoding(header string) string {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		accepted[strings.ToLower(strings.TrimSpace(name))] = q > 0
	}
	switch {
	case accepted["br"]:
		return "br"
	case accepted["gzip"]:
		return "gzip"
	default:
		return ""
	}
}

func compressible(contentType string) bool {
	mainType, _, _ := strings.Cut(contentType, ";")
	mainType = strings.ToLower(strings.TrimSpace(mainType))
	for _, t := range compressibleTypes {
		if mainType == t {
			return true
		}
	}
	return false
}

func encode(encoding string, body []byte, cfg CompressionConfig) ([]byte, error) {
	var out bytes.Buffer
	var zw io.WriteCloser
	if encoding == "br" {
		zw = brotli.NewWriterLevel(&out, cfg.BrotliLevel)
	} else {
		gz, err := gzip.NewWriterLevel(&out, cfg.GzipLevel)
		if err != nil {
			return nil, err
		}
		zw = gz
	}
	if _, err := zw.Write(body); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// bufferedWriter holds the status and body until the encoding is decided
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(status int) { b.status = status }

func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }
