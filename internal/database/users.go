package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venuebook/internal/models"
)

const userColumns = `id, name, email, phone, address, user_type, created_at, updated_at`

// CreateUser registers a user with an API token for actor resolution.
func (db *DB) CreateUser(ctx context.Context, u *models.User, apiToken string) error {
	if u.UserType == "" {
		u.UserType = models.RoleCustomer
	}
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, address, user_type, api_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Phone, u.Address, string(u.UserType), apiToken, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByToken resolves an API token to a user. Used by the HTTP
// boundary to build the actor handed into the core.
func (db *DB) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_token = ?`, token)
	return scanUser(row)
}

// ListUsers returns all registered users.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// EnsureAdmin creates the seed admin when no user holds the token yet.
func (db *DB) EnsureAdmin(ctx context.Context, name, email, token string) error {
	if token == "" {
		return nil
	}
	_, err := db.GetUserByToken(ctx, token)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	admin := &models.User{Name: name, Email: email, UserType: models.RoleAdmin}
	return db.CreateUser(ctx, admin, token)
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var userType string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &userType, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.UserType = models.Role(userType)
	return &u, nil
}
