package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/service/notification"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service *notification.Service
}

func NewHandler(service *notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	notifs := r.Group("/notifications", auth.Authenticate())
	{
		notifs.GET("", h.List)
		notifs.PUT("/:id/read", h.MarkRead)
	}
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread_only"))
	list, err := h.service.ListForUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid notification ID", err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, userID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, nil)
}
