package tasks

import (
	"mime"
	"path/filepath"
	"strings"
)

// PostPayload carries everything a poster needs for one submission. Tokens
// arrive with the request; nothing here is persisted.
type PostPayload struct {
	Commentary  string
	AuthorURN   string
	AccessToken string
	Visibility  string
	ImagePaths  []string
	AltTexts    []string
}

func guessMime(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// PublicImageURL maps a stored upload path to the URL it is served under.
func PublicImageURL(apiHost, localPath string) string {
	return strings.TrimRight(apiHost, "/") + "/uploads/" + filepath.Base(localPath)
}
