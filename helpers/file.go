package helpers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaveImage writes image bytes into dir under a random name and returns the
// stored path. The directory is created on first use.
func SaveImage(dir string, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// DownloadImage fetches a remote image and stores it in dir.
func DownloadImage(dir, imageURL string) (string, error) {
	response, err := http.Get(imageURL)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed: %s", response.Status)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	return SaveImage(dir, data, getFileExtension(imageURL))
}

// SweepImages deletes files in dir older than maxAge and returns how many
// were removed. Used by the cleanup cron for generated images that were never
// posted.
func SweepImages(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func getFileExtension(rawURL string) string {
	params := strings.Split(rawURL, "?")
	parts := strings.Split(params[0], "/")
	filename := parts[len(parts)-1]
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	return ext
}
