package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/logger"

	"gorm.io/gorm"
)

// Audit actions.
const (
	ActionSignup      = "SIGNUP"
	ActionLogin       = "LOGIN"
	ActionLoginFailed = "LOGIN_FAILED"
	ActionOAuthLogin  = "OAUTH_LOGIN"
	ActionLogout      = "LOGOUT"
	ActionCreate      = "CREATE"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
)

// Audit resources.
const (
	ResourceUser = "user"
	ResourceTask = "task"
)

// AuditEntry describes one audited action.
type AuditEntry struct {
	UserID     int
	Email      string
	Action     string
	Resource   string
	ResourceID int
	IP         string
	UserAgent  string
	Details    map[string]any
}

// AuditLogService handles audit logging
type AuditLogService struct {
	db *gorm.DB
}

func NewAuditLogService(db *gorm.DB) *AuditLogService {
	return &AuditLogService{db: db}
}

// LogAction stores entry.
func (s *AuditLogService) LogAction(ctx context.Context, entry AuditEntry) error {
	detailsJSON := ""
	if entry.Details != nil {
		jsonData, err := json.Marshal(entry.Details)
		if err != nil {
			logger.Warning("Failed to marshal audit log details:", err)
		} else {
			detailsJSON = string(jsonData)
		}
	}

	auditLog := model.AuditLog{
		UserID:     entry.UserID,
		Email:      entry.Email,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		Details:    detailsJSON,
		Timestamp:  time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&auditLog).Error; err != nil {
		logger.Warningf("Failed to create audit log: user=%d, action=%s, resource=%s, error=%v", entry.UserID, entry.Action, entry.Resource, err)
		return err
	}
	return nil
}

// GetAuditLogs returns the most recent entries for a user, newest first.
// userID 0 returns entries for everyone.
func (s *AuditLogService) GetAuditLogs(ctx context.Context, userID, limit int) ([]model.AuditLog, error) {
	query := s.db.WithContext(ctx).Model(&model.AuditLog{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []model.AuditLog
	if err := query.Order("timestamp DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CleanOldLogs removes audit logs older than days.
func (s *AuditLogService) CleanOldLogs(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be greater than 0")
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	result := s.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	logger.Infof("Cleaned %d old audit logs (older than %d days)", result.RowsAffected, days)
	return result.RowsAffected, nil
}
