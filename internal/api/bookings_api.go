package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"venuebook/internal/export"
	"venuebook/internal/lifecycle"
	"venuebook/internal/metrics"
	"venuebook/internal/service"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	ServiceName string `json:"service_name"`
	BookingDate string `json:"booking_date"` // Format: YYYY-MM-DD
	StartTime   string `json:"start_time"`   // Format: HH:MM
	EndTime     string `json:"end_time"`     // Format: HH:MM
}

// UpdateBookingRequest is the request body for PATCH /api/bookings/{id}.
// Omitted fields stay unchanged.
type UpdateBookingRequest struct {
	ServiceName string `json:"service_name,omitempty"`
	BookingDate string `json:"booking_date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")
	actor, _ := actorFrom(r)

	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b, err := s.bookings.Create(r.Context(), actor, service.CreateBookingInput{
		ServiceName: req.ServiceName,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_bookings")
	actor, _ := actorFrom(r)
	if !actor.IsAdmin() {
		s.writeServiceError(w, service.ErrAdminOnly)
		return
	}

	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleListUserBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_user_bookings")
	actor, _ := actorFrom(r)
	userID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	bookings, err := s.bookings.ListForUser(r.Context(), actor, userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// ScheduleSlot is one occupied interval in a service's day schedule.
// The endpoint is public, so booking owners are not exposed.
type ScheduleSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (s *HTTPServer) handleServiceSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("service_schedule")
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	bookings, err := s.bookings.DaySchedule(r.Context(), id, date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	slots := make([]ScheduleSlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, ScheduleSlot{
			StartTime: string(b.StartTime),
			EndTime:   string(b.EndTime),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_booking")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	b, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !actor.IsAdmin() && !actor.Owns(b) {
		s.writeServiceError(w, service.ErrNotPermitted)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_booking")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req UpdateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b, err := s.bookings.Update(r.Context(), actor, id, service.UpdateBookingInput{
		ServiceName: req.ServiceName,
		BookingDate: req.BookingDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

var transitionEvents = map[string]lifecycle.Event{
	"cancel":   lifecycle.EventCancel,
	"uncancel": lifecycle.EventUncancel,
	"complete": lifecycle.EventComplete,
	"missed":   lifecycle.EventMissed,
}

// handleTransition serves the four lifecycle actions; the event is the
// last path segment.
func (s *HTTPServer) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	action := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	event, ok := transitionEvents[action]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	metrics.IncHTTP(action + "_booking")

	b, err := s.bookings.Transition(r.Context(), actor, id, event)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_booking")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if err := s.bookings.Delete(r.Context(), actor, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_bookings")
	actor, _ := actorFrom(r)
	if !actor.IsAdmin() {
		s.writeServiceError(w, service.ErrAdminOnly)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	if err := s.exporter.Export(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Msg("export bookings")
	}
}
