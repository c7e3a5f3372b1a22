// Package job holds the background jobs scheduled by the web server.
package job

import (
	"context"
	"time"

	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/util/common"
	"github.com/mhsanaei/taskpanel/web/service"
)

const defaultRetentionDays = 90

// AuditCleanupJob cleans up old audit logs
type AuditCleanupJob struct {
	ctx           context.Context
	auditService  *service.AuditLogService
	retentionDays int
}

// NewAuditCleanupJob creates a job keeping retentionDays of audit history.
// Non-positive values fall back to 90 days. Runs are cancelled with ctx.
func NewAuditCleanupJob(ctx context.Context, auditService *service.AuditLogService, retentionDays int) *AuditCleanupJob {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &AuditCleanupJob{
		ctx:           ctx,
		auditService:  auditService,
		retentionDays: retentionDays,
	}
}

// Run cleans up old audit logs
func (j *AuditCleanupJob) Run() {
	defer common.Recover("audit cleanup job")
	logger.Debug("Audit cleanup job started")

	ctx, cancel := context.WithTimeout(j.ctx, time.Minute)
	defer cancel()

	removed, err := j.auditService.CleanOldLogs(ctx, j.retentionDays)
	if err != nil {
		logger.Warning("Failed to clean old audit logs:", err)
		return
	}
	logger.Debugf("Audit cleanup completed (removed: %d, retention: %d days)", removed, j.retentionDays)
}
