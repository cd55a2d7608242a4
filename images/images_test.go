package images

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateFromBase64(t *testing.T) {
	payload := []byte("pretend png")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer img-key", r.Header.Get("Authorization"))

		var req generationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-image-1", req.Model)
		assert.Equal(t, 1, req.N)
		assert.Contains(t, req.Prompt, "remote work trends")

		json.NewEncoder(w).Encode(map[string][]map[string]string{
			"data": {{"b64_json": base64.StdEncoding.EncodeToString(payload)}},
		})
	}))
	defer srv.Close()

	c := NewClient("img-key", srv.URL, "gpt-image-1", "1024x1024", t.TempDir(), testLogger())
	path, err := c.Generate(context.Background(), "A post about remote work trends.", "", "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGenerateFromURL(t *testing.T) {
	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hosted png"))
	}))
	defer imageSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]map[string]string{
			"data": {{"url": imageSrv.URL + "/gen.png"}},
		})
	}))
	defer srv.Close()

	c := NewClient("img-key", srv.URL, "gpt-image-1", "1024x1024", t.TempDir(), testLogger())
	path, err := c.Generate(context.Background(), "post", "", "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hosted png"), data)
}

func TestGenerateOverridesModelAndSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dall-e-3", req.Model)
		assert.Equal(t, "512x512", req.Size)
		assert.Contains(t, req.Prompt, "use warm colors")

		json.NewEncoder(w).Encode(map[string][]map[string]string{
			"data": {{"b64_json": base64.StdEncoding.EncodeToString([]byte("x"))}},
		})
	}))
	defer srv.Close()

	c := NewClient("img-key", srv.URL, "gpt-image-1", "1024x1024", t.TempDir(), testLogger())
	_, err := c.Generate(context.Background(), "post", "dall-e-3", "512x512", "use warm colors")
	assert.NoError(t, err)
}

func TestGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]map[string]string{
			"error": {"message": "billing hard limit reached"},
		})
	}))
	defer srv.Close()

	c := NewClient("img-key", srv.URL, "gpt-image-1", "1024x1024", t.TempDir(), testLogger())
	_, err := c.Generate(context.Background(), "post", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing hard limit reached")
}

func TestGenerateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]map[string]string{"data": {}})
	}))
	defer srv.Close()

	c := NewClient("img-key", srv.URL, "gpt-image-1", "1024x1024", t.TempDir(), testLogger())
	_, err := c.Generate(context.Background(), "post", "", "", "")
	assert.Error(t, err)
}
