package db

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coworking/internal/config"
	"coworking/internal/model"
)

func openMemory(t *testing.T, log zerolog.Logger) *gorm.DB {
	t.Helper()
	gormDB, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:dbpkg?mode=memory"}, log)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(gormDB, false))
	return gormDB
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_LogsThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	gormDB := openMemory(t, zerolog.New(&buf))

	var user model.User
	err := gormDB.Where("email = ?", "ghost@example.com").First(&user).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "missing rows are not logged")

	err = gormDB.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
	assert.Contains(t, buf.String(), `"component":"gorm"`)
}

func TestMigrate_Reset(t *testing.T) {
	gormDB := openMemory(t, zerolog.Nop())
	require.NoError(t, gormDB.Create(&model.User{
		Email: "a@example.com", Username: "a", PasswordHash: "x", Role: model.RoleUser, IsActive: true,
	}).Error)

	require.NoError(t, Migrate(gormDB, true))

	var count int64
	require.NoError(t, gormDB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
