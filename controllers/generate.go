package controllers

import (
	"errors"
	"net/http"

	"postpilot/models"
	"postpilot/pipeline"

	"github.com/pocketbase/pocketbase/core"
)

func SetupGenerateRoutes(se *core.ServeEvent, runner *pipeline.Runner) {
	se.Router.POST("/generate-post", func(e *core.RequestEvent) error {
		GeneratePost(e, runner, false)
		return nil
	})
	se.Router.POST("/generate-only", func(e *core.RequestEvent) error {
		GeneratePost(e, runner, true)
		return nil
	})
}

// GeneratePost runs the full pipeline for one request. With generateOnly set
// the posting step is skipped regardless of the request body.
func GeneratePost(e *core.RequestEvent, runner *pipeline.Runner, generateOnly bool) {
	var req models.GenerationRequest
	if err := e.BindBody(&req); err != nil {
		e.JSON(http.StatusBadRequest, models.PostResponse{
			Success: false,
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if generateOnly {
		req.ShouldPost = false
	}

	runner.Logger.Info("Starting post generation",
		"topic", req.Topic,
		"terms", req.Terms,
		"maxChars", req.MaxChars,
		"shouldPost", req.ShouldPost,
		"generateImage", req.GenerateImage,
	)

	resp, err := runner.Run(e.Request.Context(), req)
	if err != nil {
		runner.Logger.Error("Post generation failed", "error", err)
		e.JSON(statusFor(err), models.PostResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	e.JSON(http.StatusOK, resp)
}

// statusFor maps pipeline errors to HTTP statuses: caller mistakes and
// missing configuration are 400, provider failures 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSearchUnavailable), errors.Is(err, models.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
