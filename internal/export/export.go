// Package export produces the admin bookings report as an Excel
// workbook: one sheet for bookings, one for the catalog.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"venuebook/internal/models"
)

// Repository is the slice of the store the exporter reads.
type Repository interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListServices(ctx context.Context) ([]models.Service, error)
}

// BookingExporter writes the bookings report.
type BookingExporter struct {
	repo   Repository
	writer func() ExcelWriter
}

func NewBookingExporter(repo Repository, writerFactory func() ExcelWriter) *BookingExporter {
	if writerFactory == nil {
		writerFactory = NewExcelizeWriter
	}
	return &BookingExporter{repo: repo, writer: writerFactory}
}

// Filename names the report after the day it was generated.
func Filename(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("2006-01-02"))
}

var bookingColumns = []string{
	"ID", "Service", "User ID", "Date", "Start", "End", "Price", "Status",
}

var serviceColumns = []string{
	"ID", "Type", "Name", "Price/hour", "Availability",
}

// Export writes the full report to w.
func (e *BookingExporter) Export(ctx context.Context, w io.Writer) error {
	bookings, err := e.repo.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	services, err := e.repo.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}

	names := make(map[int64]string, len(services))
	for _, s := range services {
		names[s.ID] = s.ServiceName
	}

	excel := e.writer()

	if err := excel.AddSheet("Bookings"); err != nil {
		return err
	}
	if err := excel.WriteHeader(bookingColumns); err != nil {
		return err
	}
	for _, b := range bookings {
		name := names[b.ServiceID]
		if name == "" {
			// Service has since been removed from the catalog.
			name = fmt.Sprintf("service #%d", b.ServiceID)
		}
		row := []interface{}{
			b.ID,
			name,
			b.UserID,
			b.BookingDate.Format("2006-01-02"),
			string(b.StartTime),
			string(b.EndTime),
			b.TotalUnitPrice.StringFixed(2),
			string(b.Status),
		}
		if err := excel.WriteRow(row); err != nil {
			return err
		}
	}

	if err := excel.AddSheet("Services"); err != nil {
		return err
	}
	if err := excel.WriteHeader(serviceColumns); err != nil {
		return err
	}
	for _, s := range services {
		row := []interface{}{
			s.ID,
			s.ServiceType,
			s.ServiceName,
			s.PricePerHour.StringFixed(2),
			s.AvailabilityStatus,
		}
		if err := excel.WriteRow(row); err != nil {
			return err
		}
	}

	return excel.Save(w)
}
