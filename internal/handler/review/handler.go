package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/review"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service  *review.Service
	patients repository.PatientRepository
}

func NewHandler(service *review.Service, patients repository.PatientRepository) *Handler {
	return &Handler{service: service, patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.POST("/reviews", auth.Authenticate(), auth.RequireRole(model.UserRolePatient), h.Create)
	r.GET("/doctors/:id/reviews", h.ListByDoctor)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	patient, err := h.patients.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, errors.NewInternal(err))
		return
	}
	if patient == nil {
		httputil.RespondWithError(c, errors.NewNotFound("patient profile", nil))
		return
	}

	created, err := h.service.Create(c.Request.Context(), patient.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) ListByDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid doctor ID", err))
		return
	}

	reviews, err := h.service.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, reviews)
}
