package plugins

import (
	"errors"

	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

// Manifest is the declarative identity a plugin registers on deploy.
type Manifest struct {
	Name        string
	Version     string
	Description string
	PluginType  string
	IsBuiltin   bool
	CreatedBy   *string
}

// FieldSpec is one config field declared by a manifest.
type FieldSpec struct {
	Key         string
	Type        string
	Description string
	Required    bool
	Secret      bool
	Default     *string
}

type ManifestStore struct {
	DB *gorm.DB
}

// Register upserts a plugin and its config schema from a manifest. A name
// already registered under a different version is updated in place; no
// history rows are kept. Field rows are upserted by (plugin_id, key), so a
// redeploy with a changed schema never touches existing user config values,
// and removed keys keep their schema rows.
func (s *ManifestStore) Register(manifest Manifest, fields []FieldSpec) (*models.Plugin, error) {
	var plugin models.Plugin
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", manifest.Name).First(&plugin).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			plugin = models.Plugin{
				Name:        manifest.Name,
				Version:     manifest.Version,
				Description: manifest.Description,
				PluginType:  manifest.PluginType,
				IsBuiltin:   manifest.IsBuiltin,
				CreatedBy:   manifest.CreatedBy,
			}
			if err := tx.Create(&plugin).Error; err != nil {
				return err
			}
		} else if plugin.Version != manifest.Version {
			plugin.Version = manifest.Version
			plugin.Description = manifest.Description
			if err := tx.Save(&plugin).Error; err != nil {
				return err
			}
		}

		for _, f := range fields {
			var row models.ConfigFieldSchema
			err := tx.Where("plugin_id_ref = ? AND key = ?", plugin.ID, f.Key).First(&row).Error
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				row = models.ConfigFieldSchema{
					PluginIDRef: plugin.ID,
					Key:         f.Key,
					Type:        f.Type,
					Description: f.Description,
					Required:    f.Required,
					Secret:      f.Secret,
					Default:     f.Default,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				continue
			}
			row.Type = f.Type
			row.Description = f.Description
			row.Required = f.Required
			row.Secret = f.Secret
			row.Default = f.Default
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plugin, nil
}

// GetByName looks a plugin up by its unique name.
func (s *ManifestStore) GetByName(name string) (*models.Plugin, error) {
	var plugin models.Plugin
	if err := s.DB.Where("name = ?", name).First(&plugin).Error; err != nil {
		return nil, err
	}
	return &plugin, nil
}
