package models

import (
	"fmt"

	"github.com/claridoc/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so
		// services can translate races into domain errors.
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate builds the full schema on db: the entity tables plus the
// partial unique indexes. Everything that talks to a database, the
// test fixtures included, must migrate through here so no schema
// diverges from production.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Organization{},
		&OrgMembership{},
		&Workspace{},
		&WorkspaceMembership{},
		&WorkspaceDocument{},
		&Invitation{},
		&SystemConfig{},
		&AuditLog{},
	); err != nil {
		return err
	}
	return createPartialIndexes(db)
}

// createPartialIndexes adds the partial unique indexes that backstop
// the single-default-workspace and single-pending-invitation invariants
// under concurrent writers. MySQL has no partial indexes; there the
// transactional unset-then-set path is the only guard.
func createPartialIndexes(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		return nil
	}
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_org_default_workspace
			ON workspaces (org_id)
			WHERE is_default AND archived_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_invitation
			ON invitations (org_id, email)
			WHERE status = 'pending'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default system config rows if not exists.
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		{Key: "email_enabled", Value: "false", Type: "bool", Group: "email", Label: "Enable Invitation Emails"},
		{Key: "email_host", Value: "", Type: "string", Group: "email", Label: "SMTP Server Host"},
		{Key: "email_port", Value: "587", Type: "int", Group: "email", Label: "SMTP Server Port"},
		{Key: "email_username", Value: "", Type: "string", Group: "email", Label: "SMTP Username"},
		{Key: "email_password", Value: "", Type: "string", Group: "email", Label: "SMTP Password"},
		{Key: "email_from", Value: "", Type: "string", Group: "email", Label: "Sender Address"},
		{Key: "email_use_tls", Value: "false", Type: "bool", Group: "email", Label: "Use SSL/TLS"},
		{Key: "org_default_seat_limit", Value: "0", Type: "int", Group: "limits", Label: "Default Organization Seat Limit"},
		{Key: "audit_retention_days", Value: "90", Type: "int", Group: "audit", Label: "Audit Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
