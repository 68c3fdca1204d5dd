package database

import (
	"context"
	"errors"
	"testing"

	"venuebook/internal/models"

	"github.com/shopspring/decimal"
)

func TestServiceLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := seedService(t, db, "Children's pool", "5000")

	byID, err := db.GetService(ctx, svc.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.ServiceName != "Children's pool" {
		t.Errorf("name = %q", byID.ServiceName)
	}

	byName, err := db.GetServiceByName(ctx, "Children's pool")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID != svc.ID {
		t.Errorf("id = %d, want %d", byName.ID, svc.ID)
	}

	if _, err := db.GetServiceByName(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := seedService(t, db, "Main grounds", "8000")

	svc.PricePerHour = decimal.NewFromInt(9000)
	svc.AvailabilityStatus = "Unavailable"
	if err := db.UpdateService(ctx, svc); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := db.GetService(ctx, svc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.PricePerHour.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("rate = %s, want 9000", stored.PricePerHour)
	}
	if stored.AvailabilityStatus != "Unavailable" {
		t.Errorf("availability = %q", stored.AvailabilityStatus)
	}
}

func TestDeleteServiceCascadesGalleries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := seedService(t, db, "Conference hall", "50000")

	g := &models.Gallery{ImageURL: "https://img.example.com/hall.jpg", Caption: "main hall", ServiceID: svc.ID}
	if err := db.CreateGallery(ctx, g); err != nil {
		t.Fatalf("create gallery: %v", err)
	}

	if err := db.DeleteService(ctx, svc.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	galleries, err := db.ListServiceGalleries(ctx, svc.ID)
	if err != nil {
		t.Fatalf("list galleries: %v", err)
	}
	if len(galleries) != 0 {
		t.Errorf("galleries after cascade = %d, want 0", len(galleries))
	}
}

func TestGalleryRequiresService(t *testing.T) {
	db := newTestDB(t)
	g := &models.Gallery{ImageURL: "https://img.example.com/x.jpg", ServiceID: 404}
	if err := db.CreateGallery(context.Background(), g); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserTokenResolution(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "bob", models.RoleAdmin)

	resolved, err := db.GetUserByToken(ctx, "token-bob")
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if resolved.ID != u.ID || resolved.UserType != models.RoleAdmin {
		t.Errorf("resolved = %+v", resolved)
	}

	if _, err := db.GetUserByToken(ctx, "bogus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureAdminIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.EnsureAdmin(ctx, "root", "root@example.com", "seed-token"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := db.EnsureAdmin(ctx, "root", "root@example.com", "seed-token"); err != nil {
		t.Fatalf("ensure admin twice: %v", err)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}
