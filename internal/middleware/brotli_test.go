package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func brotliRouter(chunks ...[]byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/payload", func(c *gin.Context) {
		c.Status(http.StatusOK)
		for _, chunk := range chunks {
			_, _ = c.Writer.Write(chunk)
		}
	})
	return r
}

func requestPayload(t *testing.T, r *gin.Engine, acceptEncoding string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/payload", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBrotliCompressesLargeResponse(t *testing.T) {
	body := []byte(strings.Repeat("quiz paper line\n", 200))
	rec := requestPayload(t, brotliRouter(body), "gzip, br")

	if got := rec.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected Content-Encoding br, got %q", got)
	}
	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, body) {
		t.Fatalf("decoded body does not match: %d bytes vs %d", len(decoded), len(body))
	}
}

func TestBrotliPassesSmallResponseRaw(t *testing.T) {
	rec := requestPayload(t, brotliRouter([]byte(`{"ok":true}`)), "br")

	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("small response should not be encoded, got %q", got)
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestBrotliCompressesTailAfterThreshold(t *testing.T) {
	// A short write arriving after compression has started must go
	// through the compressor rather than land raw in the br stream.
	head := []byte(strings.Repeat("x", brotliMinLength))
	tail := []byte("trailing fragment")
	rec := requestPayload(t, brotliRouter(head, tail), "br")

	if got := rec.Header().Get("Content-Encoding"); got != "br" {
		t.Fatalf("expected Content-Encoding br, got %q", got)
	}
	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, append(append([]byte{}, head...), tail...)) {
		t.Fatalf("decoded body lost the tail: got %d bytes", len(decoded))
	}
}

func TestBrotliSkipsClientsWithoutSupport(t *testing.T) {
	body := []byte(strings.Repeat("plain\n", 300))
	rec := requestPayload(t, brotliRouter(body), "gzip")

	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("expected no encoding, got %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), body) {
		t.Fatalf("body altered for non-br client")
	}
}
