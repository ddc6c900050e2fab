package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/careslot/doctor-availability/internal/booking"
	"github.com/careslot/doctor-availability/internal/schedule"
)

const dateLayout = "2006-01-02"

// Defaults are applied when the caller omits optional availability params.
type Defaults struct {
	SlotMinutes int
	HorizonDays int
	Location    *time.Location
}

func availableSlotsHandler(engine *schedule.Engine, defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		start, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("start"), defaults.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date", "start must be a YYYY-MM-DD date")
			return
		}
		// end is exclusive: start=end yields an empty range.
		end, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("end"), defaults.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date", "end must be a YYYY-MM-DD date")
			return
		}

		duration, ok := intQueryParam(r, "duration", defaults.SlotMinutes)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be an integer number of minutes")
			return
		}

		slots, err := engine.AvailableSlots(r.Context(), doctorID, start, end, duration)
		if err != nil {
			if errors.Is(err, schedule.ErrNoScheduleDefined) {
				writeJSON(w, http.StatusOK, AvailabilityResponse{
					AvailableSlots: []SlotResponse{},
					Message:        "schedule not defined for this doctor",
				})
				return
			}
			handleAvailabilityError(w, err)
			return
		}

		resp := AvailabilityResponse{AvailableSlots: make([]SlotResponse, 0, len(slots))}
		for _, s := range slots {
			resp.AvailableSlots = append(resp.AvailableSlots, toSlotResponse(s))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func nextAvailableSlotHandler(engine *schedule.Engine, defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor id must be a valid UUID")
			return
		}

		duration, ok := intQueryParam(r, "duration", defaults.SlotMinutes)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be an integer number of minutes")
			return
		}
		horizon, ok := intQueryParam(r, "horizon_days", defaults.HorizonDays)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_horizon", "horizon_days must be an integer number of days")
			return
		}

		slot, err := engine.NextAvailableSlot(r.Context(), doctorID, duration, horizon)
		if err != nil {
			if errors.Is(err, schedule.ErrNoScheduleDefined) {
				writeJSON(w, http.StatusOK, NextSlotResponse{
					Message: "schedule not defined for this doctor",
				})
				return
			}
			handleAvailabilityError(w, err)
			return
		}

		if slot == nil {
			writeJSON(w, http.StatusOK, NextSlotResponse{
				Message: fmt.Sprintf("no available slot within the next %d days", horizon),
			})
			return
		}

		sr := toSlotResponse(*slot)
		writeJSON(w, http.StatusOK, NextSlotResponse{NextAvailableSlot: &sr})
	}
}

func bookAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		if req.StartTime.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be an RFC 3339 instant")
			return
		}

		appt, err := svc.Book(r.Context(), doctorID, patientID, req.StartTime, req.DurationMinutes, req.Reason)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RescheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.StartTime.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be an RFC 3339 instant")
			return
		}

		appt, err := svc.Reschedule(r.Context(), id, req.StartTime, req.DurationMinutes)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func confirmAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id uuid.UUID) (*schedule.Appointment, error) {
		return svc.Confirm(r.Context(), id)
	})
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id uuid.UUID) (*schedule.Appointment, error) {
		var req CancelAppointmentRequest
		if r.Body != nil {
			// Body is optional; absence means canceled by the patient.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		return svc.Cancel(r.Context(), id, req.ByDoctor)
	})
}

func noShowAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id uuid.UUID) (*schedule.Appointment, error) {
		return svc.MarkNoShow(r.Context(), id)
	})
}

func completeAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return statusChangeHandler(func(r *http.Request, id uuid.UUID) (*schedule.Appointment, error) {
		return svc.Complete(r.Context(), id)
	})
}

func statusChangeHandler(change func(r *http.Request, id uuid.UUID) (*schedule.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := change(r, id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func handleAvailabilityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidDoctorID),
		errors.Is(err, schedule.ErrInvalidDateRange),
		errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrInvalidHorizon):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var conflictErr *booking.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		// The conflict message is the rejection reason, passed through verbatim.
		writeError(w, http.StatusConflict, "scheduling_conflict", conflictErr.Conflict.Message)
	case errors.Is(err, booking.ErrDoctorBeingBooked):
		writeError(w, http.StatusConflict, "doctor_being_booked", "doctor is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, booking.ErrNotReschedulable):
		writeError(w, http.StatusConflict, "not_reschedulable", err.Error())
	case errors.Is(err, schedule.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, schedule.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, schedule.ErrInvalidDuration), errors.Is(err, schedule.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func toSlotResponse(s schedule.Slot) SlotResponse {
	return SlotResponse{
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
	}
}

func toAppointmentResponse(a *schedule.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    string(a.Status),
		Reason:    a.Reason,
	}
}

func intQueryParam(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
