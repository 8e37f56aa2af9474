package hub

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientEnsure(t *testing.T) {
	t.Run("downloads missing artifacts", func(t *testing.T) {
		req := require.New(t)

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			switch r.URL.Path {
			case "/acme/detector/resolve/main/config.json":
				io.WriteString(w, `{"id2label":{}}`)
			case "/acme/detector/resolve/main/model.onnx":
				io.WriteString(w, "onnx-bytes")
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		dir := filepath.Join(t.TempDir(), "cache")
		c := NewClient(srv.URL, "", quietLogger())
		req.NoError(c.Ensure(context.Background(), "acme/detector", dir, []string{"model.onnx", "config.json"}))
		req.Equal(int32(2), hits.Load())

		got, err := os.ReadFile(filepath.Join(dir, "model.onnx"))
		req.NoError(err)
		req.Equal("onnx-bytes", string(got))
	})

	t.Run("skips files already cached", func(t *testing.T) {
		req := require.New(t)

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			io.WriteString(w, "fresh")
		}))
		defer srv.Close()

		dir := t.TempDir()
		req.NoError(os.WriteFile(filepath.Join(dir, "model.onnx"), []byte("cached"), 0o644))

		c := NewClient(srv.URL, "", quietLogger())
		req.NoError(c.Ensure(context.Background(), "acme/detector", dir, []string{"model.onnx"}))
		req.Equal(int32(0), hits.Load(), "cached artifact must not be re-fetched")

		got, err := os.ReadFile(filepath.Join(dir, "model.onnx"))
		req.NoError(err)
		req.Equal("cached", string(got))
	})

	t.Run("sends the bearer token when configured", func(t *testing.T) {
		req := require.New(t)

		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			io.WriteString(w, "ok")
		}))
		defer srv.Close()

		c := NewClient(srv.URL+"/", "hf_secret", quietLogger())
		req.NoError(c.Ensure(context.Background(), "acme/private", t.TempDir(), []string{"config.json"}))
		req.Equal("Bearer hf_secret", auth)
	})

	t.Run("reports hub failures", func(t *testing.T) {
		req := require.New(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		dir := t.TempDir()
		c := NewClient(srv.URL, "", quietLogger())
		err := c.Ensure(context.Background(), "acme/missing", dir, []string{"model.onnx"})
		req.Error(err)
		req.Contains(err.Error(), "hub responded 404")

		// The failed fetch must not leave a partial file behind.
		entries, readErr := os.ReadDir(dir)
		req.NoError(readErr)
		req.Empty(entries)
	})
}
