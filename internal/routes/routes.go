package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/config"
	"github.com/edly-io/sparkth-sub000/internal/controllers"
	"github.com/edly-io/sparkth-sub000/internal/middleware"
	"github.com/edly-io/sparkth-sub000/internal/plugins"
	"github.com/edly-io/sparkth-sub000/internal/tools"
	"github.com/edly-io/sparkth-sub000/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, registry *tools.Registry, hub *ws.EventHub) {
	expiresMins, err := time.ParseDuration(cfg.JWTExpiresIn + "m")
	if err != nil || expiresMins == 0 {
		expiresMins = 60 * time.Minute
	}

	authCtrl := &controllers.AuthController{DB: db, JWTSecret: cfg.JWTSecret, ExpiresIn: expiresMins}
	pluginCtrl := &controllers.PluginController{
		DB:        db,
		Manifests: &plugins.ManifestStore{DB: db},
		Installs:  &plugins.InstallationService{DB: db},
		Configs:   &plugins.UserConfigStore{DB: db},
		Hub:       hub,
	}
	toolCtrl := &controllers.ToolController{Registry: registry, Hub: hub}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authCtrl.Login)
	}

	// Protected
	authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTExpiresIn: expiresMins,
	})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)

		// Plugin lifecycle
		api.GET("/plugins", pluginCtrl.List)
		api.GET("/plugins/:name", pluginCtrl.Get)
		api.POST("/plugins/:name/install", pluginCtrl.Install)
		api.POST("/plugins/:name/enabled", pluginCtrl.SetEnabled)
		api.PATCH("/plugins/:name/configs", pluginCtrl.UpsertConfigs)

		// Tool dispatch
		api.GET("/tools", toolCtrl.List)
		api.POST("/tools/call", toolCtrl.Call)

		// Admin-only
		admin := api.Group("/admin", middleware.RequireRoles("admin"))
		{
			admin.POST("/users", authCtrl.Register)
			admin.POST("/plugins", pluginCtrl.RegisterManifest)
			admin.GET("/plugins/events", ws.EventHandler(hub))
		}
	}
}
