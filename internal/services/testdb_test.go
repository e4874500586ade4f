package services

import (
	"errors"
	"testing"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the same gorm
// settings as production (TranslateError in particular, so the
// duplicate-key translation paths are exercised for real).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// The full production schema, partial unique indexes included, so
	// the tests hit the same constraints the server runs against.
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:         email,
		PasswordHash:  "x",
		Name:          email,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

func createTestOrg(t *testing.T, db *gorm.DB, slug string, adminID uint) *models.Organization {
	t.Helper()
	org, err := NewOrganizationService(db).Create(&CreateOrgRequest{Name: slug, Slug: slug}, adminID)
	if err != nil {
		t.Fatalf("create org %s: %v", slug, err)
	}
	return org
}

// assertCode fails unless err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}
