package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyAvailability is one recurring working window of a doctor.
//
// DayOfWeek uses the Sunday=0 .. Saturday=6 convention everywhere in this
// codebase. Times of day are "HH:MM" 24-hour strings.
type WeeklyAvailability struct {
	Base
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	MaxPatients int       `db:"max_patients" json:"max_patients"`
	IsActive    bool      `db:"is_active" json:"is_active"`
}

// DoctorLeave is a one-off unavailability overriding WeeklyAvailability
// for a single date. A nil StartTime/EndTime with IsFullDay set blocks the
// whole day; otherwise only [StartTime, EndTime) is blocked.
type DoctorLeave struct {
	Base
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	LeaveDate time.Time `db:"leave_date" json:"leave_date"`
	StartTime *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string   `db:"end_time" json:"end_time,omitempty"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	IsFullDay bool      `db:"is_full_day" json:"is_full_day"`
}

type CreateAvailabilityRequest struct {
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string `json:"start_time" binding:"required,clock"`
	EndTime     string `json:"end_time" binding:"required,clock"`
	MaxPatients int    `json:"max_patients" binding:"required,min=1"`
}

type UpdateAvailabilityRequest struct {
	StartTime   *string `json:"start_time" binding:"omitempty,clock"`
	EndTime     *string `json:"end_time" binding:"omitempty,clock"`
	MaxPatients *int    `json:"max_patients" binding:"omitempty,min=1"`
	IsActive    *bool   `json:"is_active"`
}

type CreateLeaveRequest struct {
	LeaveDate string  `json:"leave_date" binding:"required,dateonly"`
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time" binding:"omitempty,clock"`
	Reason    string  `json:"reason" binding:"max=500"`
	IsFullDay bool    `json:"is_full_day"`
}
