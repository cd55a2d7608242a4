package helpers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, err := SaveImage(dir, []byte("png bytes"), ".png")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ".png"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestSaveImageRejectsEmptyData(t *testing.T) {
	_, err := SaveImage(t.TempDir(), nil, ".png")
	assert.Error(t, err)
}

func TestSaveImageDefaultsExtension(t *testing.T) {
	path, err := SaveImage(t.TempDir(), []byte("x"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))
}

func TestDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := DownloadImage(dir, srv.URL+"/pictures/photo.jpg?size=large")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ".jpg"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestDownloadImageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := DownloadImage(t.TempDir(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestSweepImages(t *testing.T) {
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0o644))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	freshFile := filepath.Join(dir, "fresh.png")
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0o644))

	removed, err := SweepImages(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	assert.NoError(t, err)
}

func TestSweepImagesMissingDir(t *testing.T) {
	removed, err := SweepImages(filepath.Join(t.TempDir(), "nope"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, ".jpg", getFileExtension("https://h/a/b/photo.jpg?x=1"))
	assert.Equal(t, ".png", getFileExtension("https://h/generated"))
}
