package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/service/auth"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}
