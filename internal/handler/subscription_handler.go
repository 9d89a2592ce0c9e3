package handler

import (
	"errors"
	"net/http"

	"payshare-notifier/internal/domain/notification"
	"payshare-notifier/internal/repository"
	"payshare-notifier/internal/transport/httpdto"
	payshare_errors "payshare-notifier/pkg/errors"

	"payshare-notifier/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler owns the push-subscription registration surface. The
// rows it creates are the ones the event worker fans out to.
type SubscriptionHandler struct {
	subs           repository.PushSubscriptionRepository
	vapidPublicKey string
}

func NewSubscriptionHandler(subs repository.PushSubscriptionRepository, vapidPublicKey string) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, vapidPublicKey: vapidPublicKey}
}

func (h *SubscriptionHandler) Register(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.RegisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid subscription", "INVALID_INPUT"))
		return
	}

	sub := &notification.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
	}
	if err := h.subs.Create(c.Request.Context(), sub); err != nil {
		if errors.Is(err, payshare_errors.ErrAlreadyExists) {
			// Re-registering the same endpoint is fine, the browser does it
			// on every page load.
			c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SubscriptionResponse{
				Endpoint: sub.Endpoint,
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to register subscription", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.SubscriptionResponse{
		ID:       sub.ID,
		Endpoint: sub.Endpoint,
	}))
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return
	}

	if err := h.subs.DeleteByEndpoint(c.Request.Context(), userID, req.Endpoint); err != nil {
		if errors.Is(err, payshare_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("subscription not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to remove subscription", "INTERNAL_ERROR"))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) VAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.VAPIDKeyResponse{
		PublicKey: h.vapidPublicKey,
	}))
}
