package api

import (
	"encoding/json"
	"net/http"

	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/shopspring/decimal"
)

// ServiceRequest is the request body for service create and update.
type ServiceRequest struct {
	ServiceType        string `json:"service_type"`
	ServiceName        string `json:"service_name"`
	Description        string `json:"description,omitempty"`
	PricePerHour       string `json:"price_per_hour"` // decimal string, e.g. "5000.00"
	AvailabilityStatus string `json:"availability_status,omitempty"`
}

// GalleryRequest is the request body for POST /api/gallery.
type GalleryRequest struct {
	ServiceID int64  `json:"service_id"`
	ImageURL  string `json:"image_url"`
	Caption   string `json:"caption,omitempty"`
}

func decodeServiceRequest(r *http.Request) (*models.Service, error) {
	var req ServiceRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.PricePerHour)
	if err != nil {
		return nil, err
	}
	return &models.Service{
		ServiceType:        req.ServiceType,
		ServiceName:        req.ServiceName,
		Description:        req.Description,
		PricePerHour:       price,
		AvailabilityStatus: req.AvailabilityStatus,
	}, nil
}

func (s *HTTPServer) handleListServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_services")
	services, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *HTTPServer) handleGetService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_service")
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	svc, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *HTTPServer) handleCreateService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_service")
	actor, _ := actorFrom(r)

	svc, err := decodeServiceRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service body")
		return
	}
	if err := s.catalog.Create(r.Context(), actor, svc); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (s *HTTPServer) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_service")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	svc, err := decodeServiceRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service body")
		return
	}
	svc.ID = id
	if err := s.catalog.Update(r.Context(), actor, svc); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *HTTPServer) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_service")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	if err := s.catalog.Delete(r.Context(), actor, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleListGallery(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_gallery")
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	galleries, err := s.catalog.ListGalleries(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"galleries": galleries})
}

func (s *HTTPServer) handleAddGallery(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("add_gallery")
	actor, _ := actorFrom(r)

	var req GalleryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g := &models.Gallery{ServiceID: req.ServiceID, ImageURL: req.ImageURL, Caption: req.Caption}
	if err := s.catalog.AddGalleryImage(r.Context(), actor, g); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *HTTPServer) handleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_gallery")
	actor, _ := actorFrom(r)
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid gallery id")
		return
	}

	if err := s.catalog.DeleteGalleryImage(r.Context(), actor, id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
