package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin types. "custom" covers anything a user uploads themselves.
const (
	PluginTypeLMS       = "lms"
	PluginTypeStorage   = "storage"
	PluginTypeAI        = "ai"
	PluginTypeAnalytics = "analytics"
	PluginTypeCustom    = "custom"
)

// Config field value types declared by plugin manifests.
const (
	FieldTypeString   = "string"
	FieldTypeNumber   = "number"
	FieldTypeBoolean  = "boolean"
	FieldTypeJSON     = "json"
	FieldTypeURL      = "url"
	FieldTypeEmail    = "email"
	FieldTypePassword = "password"
)

// Plugin is one registered integration. Created on first manifest
// registration; redeploys update version/description in place. Rows are
// never deleted.
type Plugin struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Name        string  `gorm:"uniqueIndex"`
	Version     string
	Description string  `gorm:"type:text"`
	PluginType  string  `gorm:"index"`
	IsBuiltin   bool
	CreatedBy   *string `gorm:"index"` // owning user, nil for platform plugins
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Plugin) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ConfigFieldSchema is one config key a plugin declares. Upserted by
// (plugin_id, key) on redeploy; removed keys keep their rows so existing
// user values stay valid.
type ConfigFieldSchema struct {
	ID          uint   `gorm:"primaryKey"`
	PluginIDRef string `gorm:"type:uuid;index;uniqueIndex:idx_plugin_field_key"`
	Key         string `gorm:"size:128;uniqueIndex:idx_plugin_field_key"`
	Type        string
	Description string `gorm:"type:text"`
	Required    bool
	Secret      bool
	Default     *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ConfigFieldSchema) TableName() string {
	return "plugin_config_schema"
}
