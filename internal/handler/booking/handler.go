package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/internal/service/booking"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/httputil"
)

type Handler struct {
	service  *booking.Service
	patients repository.PatientRepository
}

func NewHandler(service *booking.Service, patients repository.PatientRepository) *Handler {
	return &Handler{service: service, patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/doctors/:id/slots", h.GetAvailableSlots)

	appts := r.Group("/appointments", auth.Authenticate())
	{
		appts.POST("", auth.RequireRole(model.UserRolePatient), h.Book)
		appts.GET("/my", auth.RequireRole(model.UserRolePatient), h.ListMine)
		appts.GET("", auth.RequireRole(model.UserRoleAdmin, model.UserRoleDoctor, model.UserRoleStaff), h.List)
		appts.GET("/:id", h.Get)
		appts.GET("/:id/history", h.History)
		appts.PUT("/:id/reschedule", auth.RequireRole(model.UserRolePatient), h.Reschedule)
		appts.PUT("/:id/cancel", auth.RequireRole(model.UserRolePatient), h.Cancel)
		appts.PUT("/:id/confirm", auth.RequireRole(model.UserRoleAdmin, model.UserRoleStaff), h.Confirm)
		appts.PUT("/:id/check-in", auth.RequireRole(model.UserRoleDoctor, model.UserRoleStaff), h.CheckIn)
		appts.PUT("/:id/no-show", auth.RequireRole(model.UserRoleAdmin, model.UserRoleDoctor, model.UserRoleStaff), h.MarkNoShow)
	}
}

// GetAvailableSlots returns the open slots for a doctor on a date. An
// unscheduled day yields an empty list.
func (h *Handler) GetAvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid doctor ID", err))
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), doctorID, c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	patientID, err := h.patientID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.Book(c.Request.Context(), patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, appt)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
		return
	}

	patientID, err := h.patientID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.Reschedule(c.Request.Context(), id, patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	// reason is optional, so an empty body is fine
	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
			return
		}
	}

	patientID, err := h.patientID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), id, patientID, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	// transaction_id is optional, so an empty body is fine
	var req model.ConfirmAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.NewValidation(err.Error(), err))
			return
		}
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	appt, err := h.service.Confirm(c.Request.Context(), id, userID, req.TransactionID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.transition(c, h.service.CheckIn)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{}
	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, errors.NewValidation("invalid doctor_id", err))
			return
		}
		filters.DoctorID = id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.RespondWithError(c, errors.NewValidation("invalid date_from, expected YYYY-MM-DD", err))
			return
		}
		filters.DateFrom = d
	}
	if v := c.Query("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.RespondWithError(c, errors.NewValidation("invalid date_to, expected YYYY-MM-DD", err))
			return
		}
		filters.DateTo = d
	}

	appts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appts)
}

func (h *Handler) ListMine(c *gin.Context) {
	patientID, err := h.patientID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appts, err := h.service.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appts)
}

func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	hist, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, hist)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, appointmentID, changedBy uuid.UUID) (*model.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID", err))
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		httputil.RespondWithError(c, errors.NewUnauthorized(nil))
		return
	}

	appt, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appt)
}

// patientID resolves the authenticated user's patient profile.
func (h *Handler) patientID(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, errors.NewUnauthorized(nil)
	}

	patient, err := h.patients.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return uuid.Nil, errors.NewInternal(err)
	}
	if patient == nil {
		return uuid.Nil, errors.NewNotFound("patient profile", nil)
	}
	return patient.ID, nil
}
