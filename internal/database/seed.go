package database

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/config"
	"github.com/edly-io/sparkth-sub000/internal/models"
	"github.com/edly-io/sparkth-sub000/internal/plugins"
	"github.com/edly-io/sparkth-sub000/internal/tools"
	"github.com/edly-io/sparkth-sub000/internal/utils"
)

func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := cfg.AdminEmail
	if email == "" {
		email = "admin@example.com"
	}
	fullName := cfg.AdminFullName
	if fullName == "" {
		fullName = "Administrator"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:   uuid.NewString(),
		FullName: fullName,
		Email:    email,
		Password: hashed,
		Role:     "admin",
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin:", email)
	return nil
}

// SeedBuiltinPlugins registers the builtin LMS manifests through the
// manifest store, so boot follows the same upsert path as a redeploy.
func SeedBuiltinPlugins(db *gorm.DB) error {
	store := &plugins.ManifestStore{DB: db}

	manifests := []struct {
		manifest plugins.Manifest
		fields   []plugins.FieldSpec
	}{
		{
			manifest: plugins.Manifest{
				Name:        tools.CanvasPluginName,
				Version:     "1.0.0",
				Description: "Canvas LMS integration",
				PluginType:  models.PluginTypeLMS,
				IsBuiltin:   true,
			},
			fields: []plugins.FieldSpec{
				{Key: "base_url", Type: models.FieldTypeURL, Description: "Canvas instance URL", Required: true},
				{Key: "api_token", Type: models.FieldTypePassword, Description: "Canvas API token", Required: true, Secret: true},
				{Key: "timeout", Type: models.FieldTypeNumber, Description: "Request timeout in seconds"},
			},
		},
		{
			manifest: plugins.Manifest{
				Name:        tools.OpenEdXPluginName,
				Version:     "1.0.0",
				Description: "Open edX integration",
				PluginType:  models.PluginTypeLMS,
				IsBuiltin:   true,
			},
			fields: []plugins.FieldSpec{
				{Key: "base_url", Type: models.FieldTypeURL, Description: "Open edX LMS URL", Required: true},
				{Key: "api_token", Type: models.FieldTypePassword, Description: "Open edX access token", Required: true, Secret: true},
			},
		},
	}

	for _, m := range manifests {
		if _, err := store.Register(m.manifest, m.fields); err != nil {
			return err
		}
	}
	log.Println("Seeded builtin plugin manifests")
	return nil
}
