package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPluginInstallation records that a user has installed a plugin. One row
// per (user, plugin); toggled by enable/disable, never deleted.
type UserPluginInstallation struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	UserIDRef   string `gorm:"index;uniqueIndex:idx_user_plugin"`
	PluginIDRef string `gorm:"type:uuid;uniqueIndex:idx_user_plugin"`
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *UserPluginInstallation) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (UserPluginInstallation) TableName() string {
	return "user_plugins"
}

// UserConfigValue holds one resolved config value for an installation.
// Upserted by (installation, key); overwritten, never deleted.
type UserConfigValue struct {
	ID            uint   `gorm:"primaryKey"`
	UserPluginRef string `gorm:"type:uuid;index;uniqueIndex:idx_installation_key"`
	Key           string `gorm:"size:128;uniqueIndex:idx_installation_key"`
	Value         string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (UserConfigValue) TableName() string {
	return "user_plugin_configs"
}
