package helpers

import (
	"os"

	"github.com/pocketbase/pocketbase"
)

// CreateApp builds the pocketbase app. Set HIDE_START_BANNER=true to silence
// the startup banner in container logs.
func CreateApp() *pocketbase.PocketBase {
	return pocketbase.NewWithConfig(pocketbase.Config{
		HideStartBanner: os.Getenv("HIDE_START_BANNER") == "true",
	})
}
