package setting

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/service/setting"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service *setting.Service
}

func NewHandler(service *setting.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	settings := r.Group("/settings", auth.Authenticate(), auth.RequireRole(model.UserRoleAdmin))
	{
		settings.GET("", h.List)
		settings.PUT("/:key", h.Upsert)
	}
}

func (h *Handler) List(c *gin.Context) {
	settings, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, settings)
}

func (h *Handler) Upsert(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		httputil.RespondWithError(c, errors.NewValidation("missing setting key", nil))
		return
	}

	var req model.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	updated, err := h.service.Upsert(c.Request.Context(), key, &req, userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}
