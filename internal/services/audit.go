package services

import (
	"encoding/json"
	"time"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

func InitAuditLogger(db *gorm.DB) {
	auditDB = db
}

func LogInfo(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeAudit("info", module, action, message, userID, ip, userAgent, extra)
}

func LogWarning(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeAudit("warning", module, action, message, userID, ip, userAgent, extra)
}

func LogError(module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	writeAudit("error", module, action, message, userID, ip, userAgent, extra)
}

func writeAudit(level, module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	if auditDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.AuditLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	auditDB.Create(entry)
}

type AuditLogService struct {
	db *gorm.DB
}

func NewAuditLogService(db *gorm.DB) *AuditLogService {
	return &AuditLogService{db: db}
}

type AuditLogListRequest struct {
	Page      int    `form:"page" binding:"min=1"`
	PageSize  int    `form:"page_size" binding:"min=1,max=100"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type AuditLogListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

func (s *AuditLogService) List(req *AuditLogListRequest) (*AuditLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &AuditLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

func (s *AuditLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.AuditLog{}).Distinct("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CleanupOldLogs deletes audit entries older than retentionDays.
// Returns the number of deleted records.
func (s *AuditLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

var auditCleanupCron *cron.Cron

// StartAuditCleanupScheduler runs a nightly cleanup of expired audit
// entries. Retention comes from the audit_retention_days setting; a
// value of 0 or less disables cleanup.
func StartAuditCleanupScheduler(db *gorm.DB) {
	service := NewAuditLogService(db)
	cfgSvc := NewSystemConfigService(db)

	runAuditCleanup(service, cfgSvc)

	auditCleanupCron = cron.New()
	if _, err := auditCleanupCron.AddFunc("30 3 * * *", func() {
		runAuditCleanup(service, cfgSvc)
	}); err != nil {
		logger.Errorf("[Audit] Failed to schedule cleanup job: %v", err)
		return
	}
	auditCleanupCron.Start()
	logger.Infof("[Audit] Retention cleanup scheduler started")
}

// StopAuditCleanupScheduler stops the cleanup scheduler.
func StopAuditCleanupScheduler() {
	if auditCleanupCron != nil {
		auditCleanupCron.Stop()
	}
}

func runAuditCleanup(service *AuditLogService, cfgSvc *SystemConfigService) {
	retentionDays := cfgSvc.GetInt("audit_retention_days", 90)
	if retentionDays <= 0 {
		logger.Infof("[Audit] Cleanup disabled (audit_retention_days <= 0)")
		return
	}

	deleted, err := service.CleanupOldLogs(retentionDays)
	if err != nil {
		logger.Errorf("[Audit] Failed to cleanup old entries: %v", err)
		return
	}

	if deleted > 0 {
		logger.Infof("[Audit] Cleaned up %d entries older than %d days", deleted, retentionDays)
	}
}
