package service

import (
	"context"
	"testing"
	"time"

	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogService_LogAction(t *testing.T) {
	ctx := context.Background()
	audit := NewAuditLogService(newTestDB(t))

	require.NoError(t, audit.LogAction(ctx, AuditEntry{
		UserID:     1,
		Email:      "ann@x.com",
		Action:     ActionCreate,
		Resource:   ResourceTask,
		ResourceID: 7,
		IP:         "127.0.0.1",
		Details:    map[string]any{"task": "Buy milk"},
	}))
	require.NoError(t, audit.LogAction(ctx, AuditEntry{UserID: 2, Action: ActionLogin, Resource: ResourceUser}))

	logs, err := audit.GetAuditLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionCreate, logs[0].Action)
	assert.Equal(t, 7, logs[0].ResourceID)
	assert.JSONEq(t, `{"task":"Buy milk"}`, logs[0].Details)

	all, err := audit.GetAuditLogs(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuditLogService_CleanOldLogs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	audit := NewAuditLogService(db)

	old := model.AuditLog{UserID: 1, Action: ActionLogin, Resource: ResourceUser, Timestamp: time.Now().AddDate(0, 0, -100)}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, audit.LogAction(ctx, AuditEntry{UserID: 1, Action: ActionLogout, Resource: ResourceUser}))

	_, err := audit.CleanOldLogs(ctx, 0)
	assert.Error(t, err)

	removed, err := audit.CleanOldLogs(ctx, 90)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	logs, err := audit.GetAuditLogs(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionLogout, logs[0].Action)
}
