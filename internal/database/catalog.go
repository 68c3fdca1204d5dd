package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"venuebook/internal/models"

	"github.com/shopspring/decimal"
)

const serviceColumns = `id, service_type, service_name, description, price_per_hour,
	availability_status, created_at, updated_at`

// CreateService inserts a catalog entry.
func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		INSERT INTO services (service_type, service_name, description, price_per_hour, availability_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ServiceType, s.ServiceName, s.Description, s.PricePerHour.String(),
		s.AvailabilityStatus, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// GetService returns the service with the given id.
func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	return scanService(row)
}

// GetServiceByName returns the service with the given name.
func (db *DB) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE service_name = ?`, name)
	return scanService(row)
}

// ListServices returns the whole catalog.
func (db *DB) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services ORDER BY service_type, service_name`)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	services := make([]models.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

// UpdateService updates a catalog entry in place. Booking prices are
// not retroactively recomputed; existing bookings keep the price they
// were committed with until their interval or service changes.
func (db *DB) UpdateService(ctx context.Context, s *models.Service) error {
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		UPDATE services
		SET service_type = ?, service_name = ?, description = ?, price_per_hour = ?,
		    availability_status = ?, updated_at = ?
		WHERE id = ?`,
		s.ServiceType, s.ServiceName, s.Description, s.PricePerHour.String(),
		s.AvailabilityStatus, now, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.UpdatedAt = now
	return nil
}

// DeleteService removes a service and its galleries in one
// transaction. Bookings referencing the service are kept.
func (db *DB) DeleteService(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM galleries WHERE service_id = ?", id); err != nil {
		return fmt.Errorf("delete galleries: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// CreateGallery attaches an image to a service.
func (db *DB) CreateGallery(ctx context.Context, g *models.Gallery) error {
	if _, err := db.GetService(ctx, g.ServiceID); err != nil {
		return err
	}
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		INSERT INTO galleries (image_url, caption, service_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ImageURL, g.Caption, g.ServiceID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert gallery: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

// ListServiceGalleries returns the galleries of a service.
func (db *DB) ListServiceGalleries(ctx context.Context, serviceID int64) ([]models.Gallery, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, image_url, caption, service_id, created_at, updated_at
		FROM galleries WHERE service_id = ? ORDER BY id`,
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("query galleries: %w", err)
	}
	defer rows.Close()

	galleries := make([]models.Gallery, 0)
	for rows.Next() {
		var g models.Gallery
		if err := rows.Scan(&g.ID, &g.ImageURL, &g.Caption, &g.ServiceID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	return galleries, rows.Err()
}

// DeleteGallery removes a single gallery image.
func (db *DB) DeleteGallery(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM galleries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete gallery: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func serviceRateTx(ctx context.Context, tx *sql.Tx, serviceID int64) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := tx.QueryRowContext(ctx,
		"SELECT price_per_hour FROM services WHERE id = ?", serviceID,
	).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("service rate: %w", err)
	}
	return rate, nil
}

func scanService(row rowScanner) (*models.Service, error) {
	var s models.Service
	err := row.Scan(
		&s.ID, &s.ServiceType, &s.ServiceName, &s.Description,
		&s.PricePerHour, &s.AvailabilityStatus, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan service: %w", err)
	}
	return &s, nil
}
