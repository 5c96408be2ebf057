package plugins

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

// ConfigEntry is one resolved config value in a view, annotated with the
// schema's secret flag so boundaries can decide whether to mask it.
type ConfigEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Secret    bool      `json:"secret"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PluginConfigView is a plugin as one user sees it: identity plus that
// user's installation state. Enabled is false and Configs empty when the
// user never installed it.
type PluginConfigView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	PluginType  string        `json:"plugin_type"`
	IsBuiltin   bool          `json:"is_builtin"`
	Enabled     bool          `json:"enabled"`
	Configs     []ConfigEntry `json:"configs"`
}

// UserConfigStore assembles the read-side plugin views.
type UserConfigStore struct {
	DB *gorm.DB
}

// GetForUser lists every plugin visible to the user: builtins, plugins the
// user created, and plugins the user has installed.
func (s *UserConfigStore) GetForUser(userID string) ([]PluginConfigView, error) {
	sub := s.DB.Model(&models.UserPluginInstallation{}).
		Select("plugin_id_ref").Where("user_id_ref = ?", userID)

	var visible []models.Plugin
	err := s.DB.Where("is_builtin = ?", true).
		Or("created_by = ?", userID).
		Or("id IN (?)", sub).
		Order("name ASC").
		Find(&visible).Error
	if err != nil {
		return nil, err
	}
	return s.buildViews(userID, visible)
}

// GetForPlugin returns the view for one plugin. ErrNotFound when the plugin
// does not exist or is not visible to the user.
func (s *UserConfigStore) GetForPlugin(userID, pluginID string) (*PluginConfigView, error) {
	var plugin models.Plugin
	if err := s.DB.Where("id = ?", pluginID).First(&plugin).Error; err != nil {
		return nil, err
	}
	if !plugin.IsBuiltin && (plugin.CreatedBy == nil || *plugin.CreatedBy != userID) {
		var count int64
		err := s.DB.Model(&models.UserPluginInstallation{}).
			Where("user_id_ref = ? AND plugin_id_ref = ?", userID, plugin.ID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotFound
		}
	}
	views, err := s.buildViews(userID, []models.Plugin{plugin})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// PluginConfig returns the flat key/value config a user holds for a plugin,
// looked up by plugin name. Used by tools to build their outbound clients.
func (s *UserConfigStore) PluginConfig(ctx context.Context, userID, pluginName string) (map[string]string, error) {
	db := s.DB.WithContext(ctx)

	var plugin models.Plugin
	if err := db.Where("name = ?", pluginName).First(&plugin).Error; err != nil {
		return nil, err
	}
	var inst models.UserPluginInstallation
	if err := db.Where("user_id_ref = ? AND plugin_id_ref = ?", userID, plugin.ID).First(&inst).Error; err != nil {
		return nil, err
	}
	var values []models.UserConfigValue
	if err := db.Where("user_plugin_ref = ?", inst.ID).Find(&values).Error; err != nil {
		return nil, err
	}
	config := make(map[string]string, len(values))
	for _, v := range values {
		config[v.Key] = v.Value
	}
	return config, nil
}

func (s *UserConfigStore) buildViews(userID string, visible []models.Plugin) ([]PluginConfigView, error) {
	pluginIDs := make([]string, 0, len(visible))
	for _, p := range visible {
		pluginIDs = append(pluginIDs, p.ID)
	}

	instByPlugin := map[string]models.UserPluginInstallation{}
	instIDs := make([]string, 0, len(visible))
	if len(pluginIDs) > 0 {
		var installations []models.UserPluginInstallation
		err := s.DB.Where("user_id_ref = ? AND plugin_id_ref IN (?)", userID, pluginIDs).
			Find(&installations).Error
		if err != nil {
			return nil, err
		}
		for _, inst := range installations {
			instByPlugin[inst.PluginIDRef] = inst
			instIDs = append(instIDs, inst.ID)
		}
	}

	valuesByInst := map[string][]models.UserConfigValue{}
	if len(instIDs) > 0 {
		var values []models.UserConfigValue
		if err := s.DB.Where("user_plugin_ref IN (?)", instIDs).Order("key ASC").Find(&values).Error; err != nil {
			return nil, err
		}
		for _, v := range values {
			valuesByInst[v.UserPluginRef] = append(valuesByInst[v.UserPluginRef], v)
		}
	}

	secretByPluginKey := map[string]map[string]bool{}
	if len(pluginIDs) > 0 {
		var fields []models.ConfigFieldSchema
		if err := s.DB.Where("plugin_id_ref IN (?)", pluginIDs).Find(&fields).Error; err != nil {
			return nil, err
		}
		for _, f := range fields {
			if secretByPluginKey[f.PluginIDRef] == nil {
				secretByPluginKey[f.PluginIDRef] = map[string]bool{}
			}
			secretByPluginKey[f.PluginIDRef][f.Key] = f.Secret
		}
	}

	views := make([]PluginConfigView, 0, len(visible))
	for _, p := range visible {
		view := PluginConfigView{
			ID:          p.ID,
			Name:        p.Name,
			Version:     p.Version,
			Description: p.Description,
			PluginType:  p.PluginType,
			IsBuiltin:   p.IsBuiltin,
			Configs:     []ConfigEntry{},
		}
		if inst, ok := instByPlugin[p.ID]; ok {
			view.Enabled = inst.Enabled
			for _, v := range valuesByInst[inst.ID] {
				view.Configs = append(view.Configs, ConfigEntry{
					Key:       v.Key,
					Value:     v.Value,
					Secret:    secretByPluginKey[p.ID][v.Key],
					UpdatedAt: v.UpdatedAt,
				})
			}
		}
		views = append(views, view)
	}
	return views, nil
}
