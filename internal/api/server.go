// Package api exposes the booking system over HTTP. Handlers translate
// requests into service calls and map error kinds onto status codes;
// all policy lives below them.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"venuebook/internal/apperr"
	"venuebook/internal/export"
	"venuebook/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPServer wires the orchestrators to routes.
type HTTPServer struct {
	bookings  *service.BookingService
	catalog   *service.CatalogService
	messaging *service.MessagingService
	accounts  *service.AccountService
	exporter  *export.BookingExporter
	tokens    TokenResolver
	limiter   *rate.Limiter
	logger    *zerolog.Logger
}

// Options bundles the server dependencies.
type Options struct {
	Bookings  *service.BookingService
	Catalog   *service.CatalogService
	Messaging *service.MessagingService
	Accounts  *service.AccountService
	Exporter  *export.BookingExporter
	Tokens    TokenResolver
	// RatePerSecond limits inbound requests across all clients.
	// Zero disables limiting.
	RatePerSecond float64
	Burst         int
	Logger        *zerolog.Logger
}

func NewHTTPServer(opts Options) *HTTPServer {
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RatePerSecond)
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return &HTTPServer{
		bookings:  opts.Bookings,
		catalog:   opts.Catalog,
		messaging: opts.Messaging,
		accounts:  opts.Accounts,
		exporter:  opts.Exporter,
		tokens:    opts.Tokens,
		limiter:   limiter,
		logger:    opts.Logger,
	}
}

// Handler builds the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Open endpoints.
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("GET /api/services", s.handleListServices)
	mux.HandleFunc("GET /api/services/{id}", s.handleGetService)
	mux.HandleFunc("GET /api/services/{id}/gallery", s.handleListGallery)
	mux.HandleFunc("GET /api/services/{id}/schedule", s.handleServiceSchedule)
	mux.HandleFunc("POST /api/feedback", s.handleSubmitFeedback)

	// Authenticated endpoints.
	mux.HandleFunc("POST /api/bookings", s.auth(s.handleCreateBooking))
	mux.HandleFunc("GET /api/bookings", s.auth(s.handleListBookings))
	mux.HandleFunc("GET /api/bookings/export", s.auth(s.handleExportBookings))
	mux.HandleFunc("GET /api/bookings/{id}", s.auth(s.handleGetBooking))
	mux.HandleFunc("PATCH /api/bookings/{id}", s.auth(s.handleUpdateBooking))
	mux.HandleFunc("DELETE /api/bookings/{id}", s.auth(s.handleDeleteBooking))
	mux.HandleFunc("POST /api/bookings/{id}/cancel", s.auth(s.handleTransition))
	mux.HandleFunc("POST /api/bookings/{id}/uncancel", s.auth(s.handleTransition))
	mux.HandleFunc("POST /api/bookings/{id}/complete", s.auth(s.handleTransition))
	mux.HandleFunc("POST /api/bookings/{id}/missed", s.auth(s.handleTransition))
	mux.HandleFunc("GET /api/bookings/{id}/payments", s.auth(s.handleListPayments))
	mux.HandleFunc("GET /api/users/{id}/bookings", s.auth(s.handleListUserBookings))
	mux.HandleFunc("GET /api/users", s.auth(s.handleListUsers))

	mux.HandleFunc("POST /api/services", s.auth(s.handleCreateService))
	mux.HandleFunc("PUT /api/services/{id}", s.auth(s.handleUpdateService))
	mux.HandleFunc("DELETE /api/services/{id}", s.auth(s.handleDeleteService))
	mux.HandleFunc("POST /api/gallery", s.auth(s.handleAddGallery))
	mux.HandleFunc("DELETE /api/gallery/{id}", s.auth(s.handleDeleteGallery))

	mux.HandleFunc("GET /api/feedback", s.auth(s.handleListFeedback))
	mux.HandleFunc("DELETE /api/feedback/{id}", s.auth(s.handleDeleteFeedback))
	mux.HandleFunc("POST /api/messages", s.auth(s.handleSendMessage))
	mux.HandleFunc("GET /api/messages", s.auth(s.handleConversation))
	mux.HandleFunc("POST /api/payments", s.auth(s.handleRecordPayment))

	return s.requestID(s.rateLimit(mux))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps an error kind onto an HTTP status.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	msg := "internal error"
	if errors.As(err, &appErr) {
		msg = appErr.Error()
	}

	switch apperr.KindOf(err) {
	case apperr.Validation:
		writeError(w, http.StatusBadRequest, msg)
	case apperr.NotFound:
		writeError(w, http.StatusNotFound, msg)
	case apperr.Conflict:
		writeError(w, http.StatusConflict, msg)
	case apperr.Unauthorized:
		writeError(w, http.StatusForbidden, msg)
	default:
		// Transient store failures are retryable.
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusServiceUnavailable, msg)
	}
}
