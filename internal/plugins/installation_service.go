package plugins

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

// ConfigUpdate is one key/value pair for the partial-update path.
type ConfigUpdate struct {
	Key   string
	Value string
}

// InstallationService orchestrates per-user install state. All multi-row
// mutations run inside a single transaction so callers observe either every
// write or none.
type InstallationService struct {
	DB        *gorm.DB
	Validator Validator
}

// InstallOrUpdate installs a plugin for a user, or refreshes its config if
// already installed. One transaction covers the installation upsert and all
// resolved config values; a missing required field rolls the whole thing
// back, including the installation row itself. First-time installs start
// disabled. Returns the installation id.
func (s *InstallationService) InstallOrUpdate(userID, pluginID string, submitted map[string]string) (string, error) {
	var installationID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inst models.UserPluginInstallation
		err := tx.Where("user_id_ref = ? AND plugin_id_ref = ?", userID, pluginID).First(&inst).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			inst = models.UserPluginInstallation{
				UserIDRef:   userID,
				PluginIDRef: pluginID,
				Enabled:     false,
			}
			if err := tx.Create(&inst).Error; err != nil {
				return err
			}
		} else {
			// Re-install keeps the enabled flag; only the timestamp moves.
			if err := tx.Model(&inst).Update("updated_at", time.Now().UTC()).Error; err != nil {
				return err
			}
		}

		resolved, err := s.Validator.Resolve(tx, pluginID, submitted)
		if err != nil {
			return err
		}

		for key, value := range resolved {
			if err := upsertConfigValue(tx, inst.ID, key, value); err != nil {
				return err
			}
		}
		installationID = inst.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return installationID, nil
}

// SetEnabled flips the enabled flag on an existing installation. Touches no
// config rows and runs no schema validation. Returns ErrNotFound when the
// user never installed the plugin.
func (s *InstallationService) SetEnabled(userID, pluginID string, enabled bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inst models.UserPluginInstallation
		if err := tx.Where("user_id_ref = ? AND plugin_id_ref = ?", userID, pluginID).First(&inst).Error; err != nil {
			return err
		}
		return tx.Model(&inst).Updates(map[string]interface{}{
			"enabled":    enabled,
			"updated_at": time.Now().UTC(),
		}).Error
	})
}

// UpsertConfigs writes the supplied key/value pairs directly. Unlike
// InstallOrUpdate it does not re-run required-field validation across the
// schema — only the supplied keys are touched, and keys outside the schema
// pass through unchanged. Returns how many pairs were written, or
// ErrNotFound when the plugin was never installed.
func (s *InstallationService) UpsertConfigs(userID, pluginID string, updates []ConfigUpdate) (int, error) {
	count := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inst models.UserPluginInstallation
		if err := tx.Where("user_id_ref = ? AND plugin_id_ref = ?", userID, pluginID).First(&inst).Error; err != nil {
			return err
		}
		for _, u := range updates {
			if err := upsertConfigValue(tx, inst.ID, u.Key, u.Value); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func upsertConfigValue(tx *gorm.DB, installationID, key, value string) error {
	var row models.UserConfigValue
	err := tx.Where("user_plugin_ref = ? AND key = ?", installationID, key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row = models.UserConfigValue{
			UserPluginRef: installationID,
			Key:           key,
			Value:         value,
		}
		return tx.Create(&row).Error
	}
	row.Value = value
	row.UpdatedAt = time.Now().UTC()
	return tx.Save(&row).Error
}
