package helpers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

type SuccessResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(e *core.RequestEvent, message string, data interface{}) {
	var successResponse SuccessResponse
	successResponse.Status = true
	successResponse.Message = message
	successResponse.Data = data
	e.JSON(http.StatusOK, successResponse)
}
