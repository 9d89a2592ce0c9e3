package handler

import (
	"errors"
	"net/http"
	"strconv"

	"payshare-notifier/internal/middleware"
	"payshare-notifier/internal/repository"
	"payshare-notifier/internal/transport/httpdto"
	payshare_errors "payshare-notifier/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PreferenceHandler exposes the caller's own materialized notification
// preference for a workspace. Read-only: preference writes belong to the
// main application.
type PreferenceHandler struct {
	prefs repository.PreferenceRepository
}

func NewPreferenceHandler(prefs repository.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

func (h *PreferenceHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	workspaceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid workspace id", "INVALID_INPUT"))
		return
	}

	pref, err := h.prefs.GetPreference(c.Request.Context(), workspaceID, userID)
	if err != nil {
		if errors.Is(err, payshare_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not a member of this workspace", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to load preference", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PreferenceResponse{
		WorkspaceID:       pref.WorkspaceID,
		UserID:            pref.UserID,
		WebPushEnabled:    pref.WebPushEnabled,
		SlackEnabled:      pref.SlackEnabled,
		EnabledEventTypes: pref.EnabledEventTypes,
	}))
}
