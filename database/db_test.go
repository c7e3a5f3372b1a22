package database

import (
	"path/filepath"
	"testing"

	"github.com/mhsanaei/taskpanel/config"
	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "test.db")
	return cfg
}

func TestInitDB_CreatesSchema(t *testing.T) {
	db, err := InitDB(newTestDB(t))
	require.NoError(t, err)
	defer CloseDB(db)

	for _, m := range []any{&model.User{}, &model.Task{}, &model.AuditLog{}} {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasColumn(&model.Task{}, "task"))
}

func TestInitDB_DuplicateEmailIsTranslated(t *testing.T) {
	db, err := InitDB(newTestDB(t))
	require.NoError(t, err)
	defer CloseDB(db)

	require.NoError(t, db.Create(model.NewOAuthUser("Ann", "ann@x.com")).Error)
	err = db.Create(model.NewOAuthUser("Ann again", "ann@x.com")).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestInitDB_TaskRequiresExistingUser(t *testing.T) {
	db, err := InitDB(newTestDB(t))
	require.NoError(t, err)
	defer CloseDB(db)

	err = db.Create(&model.Task{UserId: 999, Text: "orphan"}).Error
	assert.Error(t, err)
}

func TestInitDB_RejectsInvalidConfig(t *testing.T) {
	cfg := config.GetDefaultDatabaseConfig()
	cfg.Type = "oracle"
	_, err := InitDB(cfg)
	assert.Error(t, err)
}

func TestCloseDB_Nil(t *testing.T) {
	assert.NoError(t, CloseDB(nil))
}
