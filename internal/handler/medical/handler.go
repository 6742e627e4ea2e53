package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/medical"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service  *medical.Service
	patients repository.PatientRepository
}

func NewHandler(service *medical.Service, patients repository.PatientRepository) *Handler {
	return &Handler{service: service, patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.PUT("/appointments/:id/complete",
		auth.Authenticate(), auth.RequireRole(model.UserRoleDoctor), h.CompleteAppointment)

	records := r.Group("/medical-records", auth.Authenticate())
	{
		records.GET("/my", auth.RequireRole(model.UserRolePatient), h.ListMine)
		records.GET("/:id", h.GetRecord)
		records.GET("/:id/prescriptions", h.ListPrescriptions)
	}
}

// CompleteAppointment closes a checked-in visit with its medical record.
func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	record, err := h.service.CompleteAppointment(c.Request.Context(), id, userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid record ID", err))
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

func (h *Handler) ListMine(c *gin.Context) {
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

	records, err := h.service.ListByPatient(c.Request.Context(), patient.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, records)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid record ID", err))
		return
	}

	prescriptions, err := h.service.ListPrescriptions(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, prescriptions)
}
