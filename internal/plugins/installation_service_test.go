package plugins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

func seedCanvas(t *testing.T, db *gorm.DB) *models.Plugin {
	t.Helper()
	plugin, err := (&ManifestStore{DB: db}).Register(canvasManifest("1.0.0"), canvasFields())
	require.NoError(t, err)
	return plugin
}

func installationCount(t *testing.T, db *gorm.DB, userID, pluginID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.UserPluginInstallation{}).
		Where("user_id_ref = ? AND plugin_id_ref = ?", userID, pluginID).
		Count(&count).Error)
	return count
}

func TestInstallOrUpdate_Success(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	id, err := service.InstallOrUpdate("user-1", plugin.ID, map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var inst models.UserPluginInstallation
	require.NoError(t, db.Where("id = ?", id).First(&inst).Error)
	require.False(t, inst.Enabled, "first install starts disabled")

	var values []models.UserConfigValue
	require.NoError(t, db.Where("user_plugin_ref = ?", id).Order("key ASC").Find(&values).Error)
	require.Len(t, values, 2)
	require.Equal(t, "api_token", values[0].Key)
	require.Equal(t, "base_url", values[1].Key)
}

func TestInstallOrUpdate_MissingRequiredRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	_, err := service.InstallOrUpdate("user-1", plugin.ID, map[string]string{})
	var missing *MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)

	// Atomicity: the installation upsert from step one rolled back too.
	require.EqualValues(t, 0, installationCount(t, db, "user-1", plugin.ID))

	var configCount int64
	require.NoError(t, db.Model(&models.UserConfigValue{}).Count(&configCount).Error)
	require.EqualValues(t, 0, configCount)
}

func TestInstallOrUpdate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	submitted := map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	}
	first, err := service.InstallOrUpdate("user-1", plugin.ID, submitted)
	require.NoError(t, err)
	second, err := service.InstallOrUpdate("user-1", plugin.ID, submitted)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.EqualValues(t, 1, installationCount(t, db, "user-1", plugin.ID))

	var values []models.UserConfigValue
	require.NoError(t, db.Where("user_plugin_ref = ?", first).Find(&values).Error)
	require.Len(t, values, 2, "one row per key, never duplicated")
}

func TestInstallOrUpdate_ReinstallKeepsEnabledFlag(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	submitted := map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	}
	id, err := service.InstallOrUpdate("user-1", plugin.ID, submitted)
	require.NoError(t, err)
	require.NoError(t, service.SetEnabled("user-1", plugin.ID, true))

	_, err = service.InstallOrUpdate("user-1", plugin.ID, submitted)
	require.NoError(t, err)

	var inst models.UserPluginInstallation
	require.NoError(t, db.Where("id = ?", id).First(&inst).Error)
	require.True(t, inst.Enabled)
}

func TestInstallOrUpdate_OptionalFieldWithoutValueNotStored(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	id, err := service.InstallOrUpdate("user-1", plugin.ID, map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.UserConfigValue{}).
		Where("user_plugin_ref = ? AND key = ?", id, "timeout").
		Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSetEnabled(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	t.Run("NotInstalled", func(t *testing.T) {
		err := service.SetEnabled("user-1", plugin.ID, true)
		require.ErrorIs(t, err, ErrNotFound)
	})

	id, err := service.InstallOrUpdate("user-1", plugin.ID, map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	})
	require.NoError(t, err)

	t.Run("Toggle", func(t *testing.T) {
		require.NoError(t, service.SetEnabled("user-1", plugin.ID, true))
		var inst models.UserPluginInstallation
		require.NoError(t, db.Where("id = ?", id).First(&inst).Error)
		require.True(t, inst.Enabled)

		require.NoError(t, service.SetEnabled("user-1", plugin.ID, false))
		require.NoError(t, db.Where("id = ?", id).First(&inst).Error)
		require.False(t, inst.Enabled)
	})

	t.Run("NeverTouchesConfigRows", func(t *testing.T) {
		var before []models.UserConfigValue
		require.NoError(t, db.Where("user_plugin_ref = ?", id).Order("key ASC").Find(&before).Error)

		require.NoError(t, service.SetEnabled("user-1", plugin.ID, true))

		var after []models.UserConfigValue
		require.NoError(t, db.Where("user_plugin_ref = ?", id).Order("key ASC").Find(&after).Error)
		require.Equal(t, before, after)
	})
}

func TestUpsertConfigs(t *testing.T) {
	db := newTestDB(t)
	plugin := seedCanvas(t, db)
	service := &InstallationService{DB: db}

	t.Run("NotInstalled", func(t *testing.T) {
		_, err := service.UpsertConfigs("user-1", plugin.ID, []ConfigUpdate{{Key: "api_token", Value: "xyz"}})
		require.ErrorIs(t, err, ErrNotFound)
	})

	id, err := service.InstallOrUpdate("user-1", plugin.ID, map[string]string{
		"base_url":  "https://canvas.example.com",
		"api_token": "abc",
	})
	require.NoError(t, err)

	var original models.UserConfigValue
	require.NoError(t, db.Where("user_plugin_ref = ? AND key = ?", id, "api_token").First(&original).Error)
	time.Sleep(10 * time.Millisecond)

	t.Run("OverwritesSuppliedKeyOnly", func(t *testing.T) {
		count, err := service.UpsertConfigs("user-1", plugin.ID, []ConfigUpdate{{Key: "api_token", Value: "xyz"}})
		require.NoError(t, err)
		require.Equal(t, 1, count)

		var rows []models.UserConfigValue
		require.NoError(t, db.Where("user_plugin_ref = ? AND key = ?", id, "api_token").Find(&rows).Error)
		require.Len(t, rows, 1, "upsert, not insert")
		require.Equal(t, "xyz", rows[0].Value)
		require.True(t, rows[0].UpdatedAt.After(original.UpdatedAt))

		require.EqualValues(t, 1, installationCount(t, db, "user-1", plugin.ID))
	})

	t.Run("BypassesSchemaValidation", func(t *testing.T) {
		// Keys outside the schema pass through unchanged on this path.
		count, err := service.UpsertConfigs("user-1", plugin.ID, []ConfigUpdate{{Key: "custom_flag", Value: "on"}})
		require.NoError(t, err)
		require.Equal(t, 1, count)

		var row models.UserConfigValue
		require.NoError(t, db.Where("user_plugin_ref = ? AND key = ?", id, "custom_flag").First(&row).Error)
		require.Equal(t, "on", row.Value)
	})
}
