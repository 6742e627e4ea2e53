package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/schedule"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service *schedule.Service
	doctors repository.DoctorRepository
}

func NewHandler(service *schedule.Service, doctors repository.DoctorRepository) *Handler {
	return &Handler{service: service, doctors: doctors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	sched := r.Group("/schedule", auth.Authenticate(), auth.RequireRole(model.UserRoleDoctor))
	{
		sched.GET("/availability", h.ListAvailability)
		sched.POST("/availability", h.CreateAvailability)
		sched.PUT("/availability/:id", h.UpdateAvailability)
		sched.POST("/leaves", h.CreateLeave)
	}
}

func (h *Handler) ListAvailability(c *gin.Context) {
	doctorID, err := h.doctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	windows, err := h.service.ListAvailability(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, windows)
}

func (h *Handler) CreateAvailability(c *gin.Context) {
	var req model.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	doctorID, err := h.doctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	wa, err := h.service.CreateAvailability(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, wa)
}

func (h *Handler) UpdateAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid availability ID", err))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	doctorID, err := h.doctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	wa, err := h.service.UpdateAvailability(c.Request.Context(), doctorID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, wa)
}

func (h *Handler) CreateLeave(c *gin.Context) {
	var req model.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	doctorID, err := h.doctorID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	leave, err := h.service.CreateLeave(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, leave)
}

func (h *Handler) doctorID(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, errors.NewUnauthorized(nil)
	}

	doctor, err := h.doctors.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return uuid.Nil, errors.NewInternal(err)
	}
	if doctor == nil {
		return uuid.Nil, errors.NewNotFound("doctor profile", nil)
	}
	return doctor.ID, nil
}
