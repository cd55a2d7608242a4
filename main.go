package main

import (
	"log"
	"os"
	"time"

	"postpilot/config"
	"postpilot/controllers"
	"postpilot/generator"
	"postpilot/helpers"
	"postpilot/images"
	"postpilot/news"
	"postpilot/pipeline"
	"postpilot/tasks"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

var app *pocketbase.PocketBase

const imageMaxAge = 24 * time.Hour

func main() {
	godotenv.Load()

	cfg := config.Load()

	app = helpers.CreateApp()
	logger := app.Logger()

	helpers.SetRequestTimeout(cfg.RequestTimeout)

	llm := generator.NewLLMClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.RequestTimeout, logger)

	runner := &pipeline.Runner{
		Config:    cfg,
		Search:    news.NewClient(cfg.EventRegistryKey, cfg.EventRegistryBaseURL, logger),
		Writer:    generator.NewWriter(llm, cfg.MaxIterations, logger),
		Images:    images.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ImageModel, cfg.ImageSize, cfg.UploadsDir, logger),
		Linkedin:  tasks.NewLinkedinClient(cfg.LinkedinBaseURL, cfg.LinkedinVersion, cfg.RequestTimeout, logger),
		Instagram: tasks.NewInstagramClient(cfg.InstagramBaseURL, logger),
		Logger:    logger,
	}

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		controllers.SetupGenerateRoutes(se, runner)
		controllers.SetupSystemRoutes(se, cfg)

		// stored generated images, fetched by providers and the UI preview
		se.Router.GET("/uploads/{path...}", apis.Static(os.DirFS(cfg.UploadsDir), false))
		// the form UI
		se.Router.GET("/{path...}", apis.Static(os.DirFS("./pb_public"), true))
		return se.Next()
	})

	app.Cron().MustAdd("Cleanup Generated Images", "0 * * * *", func() {
		removed, err := helpers.SweepImages(cfg.UploadsDir, imageMaxAge)
		if err != nil {
			app.Logger().Error("Image cleanup failed", "error", err)
			return
		}
		if removed > 0 {
			app.Logger().Info("Cleaned up stale generated images", "removed", removed)
		}
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
