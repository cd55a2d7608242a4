package models

import "errors"

// Error taxonomy shared by the pipeline and the provider clients. Callers
// branch with errors.Is; the wrapped detail carries the provider message
// verbatim.
var (
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrSearchUnavailable = errors.New("article search unavailable")
	ErrGenerationFailed  = errors.New("content generation failed")
	ErrAuth              = errors.New("authentication error")
	ErrUpload            = errors.New("media upload error")
	ErrPost              = errors.New("post submission error")
)
