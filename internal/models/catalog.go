package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service represents a bookable venue facility (pool, grounds, hall).
type Service struct {
	ID                 int64           `json:"id"`
	ServiceType        string          `json:"service_type"`
	ServiceName        string          `json:"service_name"`
	Description        string          `json:"description"`
	PricePerHour       decimal.Decimal `json:"price_per_hour"`
	AvailabilityStatus string          `json:"availability_status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Gallery is an image attached to a service. Galleries are deleted
// together with their service.
type Gallery struct {
	ID        int64     `json:"id"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	ServiceID int64     `json:"service_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
