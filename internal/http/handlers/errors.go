package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ehon-backend/internal/http/response"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/flow"
	"github.com/yungbote/ehon-backend/internal/platform/apierr"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// toAPIError classifies service errors into the HTTP error envelope.
func toAPIError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		return apierr.New(http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, flow.ErrInvalidTransition):
		return apierr.New(http.StatusConflict, "invalid_transition", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
}

func respondErr(c *gin.Context, log *logger.Logger, err error) {
	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}
