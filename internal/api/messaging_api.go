package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/shopspring/decimal"
)

// FeedbackRequest is the request body for POST /api/feedback.
type FeedbackRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Message     string `json:"message"`
}

// MessageRequest is the request body for POST /api/messages.
type MessageRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
}

// PaymentRequest is the request body for POST /api/payments.
type PaymentRequest struct {
	BookingID     int64  `json:"booking_id"`
	Amount        string `json:"amount"` // decimal string
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status,omitempty"`
	PaymentDate   string `json:"payment_date,omitempty"` // Format: YYYY-MM-DD
}

func (s *HTTPServer) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("submit_feedback")

	var req FeedbackRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	f := &models.Feedback{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Message:     req.Message,
	}
	if err := s.messaging.SubmitFeedback(r.Context(), f); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *HTTPServer) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_feedback")
	actor, _ := actorFrom(r)

	feedback, err := s.messaging.ListFeedback(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": feedback})
}

func (s *HTTPServer) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_feedback")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	if err := s.messaging.DeleteFeedback(r.Context(), actor, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("send_message")
	actor, _ := actorFrom(r)

	var req MessageRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := s.messaging.Send(r.Context(), actor, req.RecipientID, req.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleConversation returns the messages between the actor and the
// user named in ?with=. Admins may pass both ?a= and ?b= instead.
func (s *HTTPServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("conversation")
	actor, _ := actorFrom(r)

	a, b := actor.ID, int64(0)
	if with := r.URL.Query().Get("with"); with != "" {
		id, err := strconv.ParseInt(with, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'with' parameter")
			return
		}
		b = id
	} else if actor.IsAdmin() {
		var err error
		if a, err = strconv.ParseInt(r.URL.Query().Get("a"), 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'a' parameter")
			return
		}
		if b, err = strconv.ParseInt(r.URL.Query().Get("b"), 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'b' parameter")
			return
		}
	} else {
		writeError(w, http.StatusBadRequest, "'with' parameter is required")
		return
	}

	messages, err := s.messaging.Conversation(r.Context(), actor, a, b)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *HTTPServer) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("record_payment")
	actor, _ := actorFrom(r)

	var req PaymentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	p := &models.Payment{
		BookingID:     req.BookingID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatus(req.PaymentStatus),
	}
	if req.PaymentDate != "" {
		date, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid payment date; expected YYYY-MM-DD")
			return
		}
		p.PaymentDate = date
	}

	if err := s.messaging.RecordPayment(r.Context(), actor, p); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *HTTPServer) handleListPayments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_payments")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	payments, err := s.messaging.BookingPayments(r.Context(), actor, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}
