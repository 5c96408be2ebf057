package plugins

import (
	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

// Validator resolves a submitted value set against a plugin's config schema.
type Validator struct{}

// Resolve applies submitted-over-default precedence for every field in the
// plugin's schema. A required field with neither a submitted value nor a
// default aborts the whole resolution; callers must not have written
// anything before Resolve returns nil error. Optional fields with no value
// and no default are omitted entirely, never stored as empty. Submitted keys
// not present in the schema are ignored here (the partial-update path writes
// unknown keys through without schema checks).
func (Validator) Resolve(db *gorm.DB, pluginID string, submitted map[string]string) (map[string]string, error) {
	var fields []models.ConfigFieldSchema
	if err := db.Where("plugin_id_ref = ?", pluginID).Find(&fields).Error; err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(fields))
	for _, f := range fields {
		value, ok := submitted[f.Key]
		if !ok && f.Default != nil {
			value = *f.Default
			ok = true
		}
		if !ok {
			if f.Required {
				return nil, &MissingRequiredFieldError{Key: f.Key}
			}
			continue
		}
		resolved[f.Key] = value
	}
	return resolved, nil
}
