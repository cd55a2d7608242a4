package controllers

import (
	"postpilot/config"
	"postpilot/helpers"

	"github.com/pocketbase/pocketbase/core"
)

func SetupSystemRoutes(se *core.ServeEvent, cfg *config.Config) {
	se.Router.GET("/health", func(e *core.RequestEvent) error {
		Health(e)
		return nil
	})
	se.Router.GET("/env-check", func(e *core.RequestEvent) error {
		EnvCheck(e, cfg)
		return nil
	})
}

// Health reports process liveness. It never touches a provider, so it
// succeeds whenever the process is running.
func Health(e *core.RequestEvent) {
	helpers.Success(e, "healthy", nil)
}

// EnvCheck reports which provider credentials are configured. Only presence
// booleans are exposed, never the values.
func EnvCheck(e *core.RequestEvent, cfg *config.Config) {
	helpers.Success(e, "", map[string]any{
		"openai_key_set":        cfg.OpenAIKey != "",
		"openai_model":          cfg.OpenAIModel,
		"eventregistry_key_set": cfg.EventRegistryKey != "",
		"image_model":           cfg.ImageModel,
		"linkedin_version":      cfg.LinkedinVersion,
	})
}
