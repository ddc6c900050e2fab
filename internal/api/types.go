package api

import (
	"time"

	"github.com/google/uuid"
)

type SlotResponse struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type AvailabilityResponse struct {
	AvailableSlots []SlotResponse `json:"available_slots"`
	Message        string         `json:"message,omitempty"`
}

type NextSlotResponse struct {
	NextAvailableSlot *SlotResponse `json:"next_available_slot"`
	Message           string        `json:"message,omitempty"`
}

type BookAppointmentRequest struct {
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          *string   `json:"reason,omitempty"`
}

type RescheduleAppointmentRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type CancelAppointmentRequest struct {
	ByDoctor bool `json:"by_doctor"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Reason    *string   `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
