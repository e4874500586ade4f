package services

import (
	"strconv"

	"github.com/claridoc/backend/internal/models"
	"gorm.io/gorm"
)

// SystemConfigService reads operator-tunable settings stored in the
// system_configs table (seeded at migration).
type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

// Get returns the value for a key, or fallback when the row is missing.
func (s *SystemConfigService) Get(key, fallback string) string {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return fallback
	}
	return cfg.Value
}

// GetInt returns an integer setting, or fallback when missing/invalid.
func (s *SystemConfigService) GetInt(key string, fallback int) int {
	v := s.Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetBool returns a boolean setting, or fallback when missing.
func (s *SystemConfigService) GetBool(key string, fallback bool) bool {
	v := s.Get(key, "")
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}

// Set upserts a setting.
func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	cfg.Value = value
	return s.db.Save(&cfg).Error
}
