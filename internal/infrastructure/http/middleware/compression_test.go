package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(body string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func serveCompressed(h http.Handler, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/latest", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	Compression(DefaultCompressionConfig())(h).ServeHTTP(rec, req)
	return rec
}

func TestCompression(t *testing.T) {
	large := `{"foods":"` + strings.Repeat("oat porridge ", 200) + `"}`

	t.Run("brotli preferred", func(t *testing.T) {
		rec := serveCompressed(jsonHandler(large, http.StatusCreated), "gzip, br")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
		decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
		require.NoError(t, err)
		assert.Equal(t, large, string(decoded))
	})

	t.Run("gzip when brotli refused", func(t *testing.T) {
		rec := serveCompressed(jsonHandler(large, http.StatusOK), "br;q=0, gzip")

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		decoded, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, large, string(decoded))
	})

	t.Run("small body passes through", func(t *testing.T) {
		rec := serveCompressed(jsonHandler(`{"ok":true}`, http.StatusOK), "br")

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
		assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
	})

	t.Run("no accept encoding", func(t *testing.T) {
		rec := serveCompressed(jsonHandler(large, http.StatusOK), "")

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})
}

func TestNegotiateEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"identity", ""},
		{"gzip", "gzip"},
		{"GZIP;q=0.5, br;q=0.8", "br"},
		{"br;q=0", ""},
		{"deflate, gzip;q=0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, negotiateEncoding(tt.header))
		})
	}
}
