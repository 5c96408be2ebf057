package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edly-io/sparkth-sub000/internal/models"
	"github.com/edly-io/sparkth-sub000/internal/plugins"
	"github.com/edly-io/sparkth-sub000/internal/ws"
)

type PluginController struct {
	DB        *gorm.DB
	Manifests *plugins.ManifestStore
	Installs  *plugins.InstallationService
	Configs   *plugins.UserConfigStore
	Hub       *ws.EventHub
}

type fieldSpecRequest struct {
	Key         string  `json:"key" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Description string  `json:"description"`
	Required    bool    `json:"required"`
	Secret      bool    `json:"secret"`
	Default     *string `json:"default"`
}

type registerManifestRequest struct {
	Name        string             `json:"name" binding:"required"`
	Version     string             `json:"version" binding:"required"`
	Description string             `json:"description"`
	PluginType  string             `json:"plugin_type" binding:"required"`
	IsBuiltin   bool               `json:"is_builtin"`
	Fields      []fieldSpecRequest `json:"fields"`
}

type installRequest struct {
	Values map[string]interface{} `json:"values"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

var validPluginTypes = map[string]struct{}{
	models.PluginTypeLMS:       {},
	models.PluginTypeStorage:   {},
	models.PluginTypeAI:        {},
	models.PluginTypeAnalytics: {},
	models.PluginTypeCustom:    {},
}

var validFieldTypes = map[string]struct{}{
	models.FieldTypeString:   {},
	models.FieldTypeNumber:   {},
	models.FieldTypeBoolean:  {},
	models.FieldTypeJSON:     {},
	models.FieldTypeURL:      {},
	models.FieldTypeEmail:    {},
	models.FieldTypePassword: {},
}

// RegisterManifest upserts a plugin manifest. Redeploys with a new version
// update the existing row; user config values are never touched.
func (pc *PluginController) RegisterManifest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req registerManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if _, ok := validPluginTypes[req.PluginType]; !ok {
		respond(c, http.StatusBadRequest, "invalid plugin_type", nil)
		return
	}
	fields := make([]plugins.FieldSpec, 0, len(req.Fields))
	for _, f := range req.Fields {
		if _, ok := validFieldTypes[f.Type]; !ok {
			respond(c, http.StatusBadRequest, "invalid field type for key "+f.Key, nil)
			return
		}
		fields = append(fields, plugins.FieldSpec{
			Key:         f.Key,
			Type:        f.Type,
			Description: f.Description,
			Required:    f.Required,
			Secret:      f.Secret,
			Default:     f.Default,
		})
	}

	manifest := plugins.Manifest{
		Name:        strings.TrimSpace(req.Name),
		Version:     req.Version,
		Description: req.Description,
		PluginType:  req.PluginType,
		IsBuiltin:   req.IsBuiltin,
	}
	if !req.IsBuiltin {
		creator := user.UserID
		manifest.CreatedBy = &creator
	}

	plugin, err := pc.Manifests.Register(manifest, fields)
	if err != nil {
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	pc.Hub.Broadcast(ws.PluginEvent{
		Type:   ws.EventManifestRegistered,
		Plugin: plugin.Name,
		UserID: user.UserID,
	})
	respond(c, http.StatusOK, "manifest registered", gin.H{
		"id":      plugin.ID,
		"name":    plugin.Name,
		"version": plugin.Version,
	})
}

// List returns every plugin visible to the caller with installation state.
func (pc *PluginController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	views, err := pc.Configs.GetForUser(user.UserID)
	if err != nil {
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "ok", views)
}

// Get returns one plugin view by name.
func (pc *PluginController) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	plugin, err := pc.lookupPlugin(c)
	if err != nil {
		return
	}
	view, err := pc.Configs.GetForPlugin(user.UserID, plugin.ID)
	if err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			respond(c, http.StatusNotFound, "plugin not found", nil)
			return
		}
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "ok", view)
}

// Install installs the plugin for the caller or refreshes its config.
func (pc *PluginController) Install(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	plugin, err := pc.lookupPlugin(c)
	if err != nil {
		return
	}

	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	installationID, err := pc.Installs.InstallOrUpdate(user.UserID, plugin.ID, coerceValues(req.Values))
	if err != nil {
		var missing *plugins.MissingRequiredFieldError
		if errors.As(err, &missing) {
			respond(c, http.StatusBadRequest, missing.Error(), gin.H{"missing_field": missing.Key})
			return
		}
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	pc.Hub.Broadcast(ws.PluginEvent{
		Type:   ws.EventInstalled,
		Plugin: plugin.Name,
		UserID: user.UserID,
	})
	respond(c, http.StatusOK, "plugin installed", gin.H{"installation_id": installationID})
}

// SetEnabled toggles the installation on or off. No config rows are touched.
func (pc *PluginController) SetEnabled(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	plugin, err := pc.lookupPlugin(c)
	if err != nil {
		return
	}

	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := pc.Installs.SetEnabled(user.UserID, plugin.ID, *req.Enabled); err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			respond(c, http.StatusNotFound, "plugin not installed", nil)
			return
		}
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	event := ws.EventDisabled
	message := "plugin disabled"
	if *req.Enabled {
		event = ws.EventEnabled
		message = "plugin enabled"
	}
	pc.Hub.Broadcast(ws.PluginEvent{Type: event, Plugin: plugin.Name, UserID: user.UserID})
	respond(c, http.StatusOK, message, nil)
}

// UpsertConfigs writes the supplied keys directly, without re-running the
// install-time required-field validation.
func (pc *PluginController) UpsertConfigs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	plugin, err := pc.lookupPlugin(c)
	if err != nil {
		return
	}

	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(req.Values) == 0 {
		respond(c, http.StatusBadRequest, "no values supplied", nil)
		return
	}

	values := coerceValues(req.Values)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	updates := make([]plugins.ConfigUpdate, 0, len(keys))
	for _, key := range keys {
		updates = append(updates, plugins.ConfigUpdate{Key: key, Value: values[key]})
	}

	count, err := pc.Installs.UpsertConfigs(user.UserID, plugin.ID, updates)
	if err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			respond(c, http.StatusNotFound, "plugin not installed", nil)
			return
		}
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "configs updated", gin.H{"updated": count})
}

// lookupPlugin resolves the :name route param, writing the error response
// itself when the plugin is absent.
func (pc *PluginController) lookupPlugin(c *gin.Context) (*models.Plugin, error) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		respond(c, http.StatusBadRequest, "invalid plugin name", nil)
		return nil, plugins.ErrNotFound
	}
	plugin, err := pc.Manifests.GetByName(name)
	if err != nil {
		if errors.Is(err, plugins.ErrNotFound) {
			respond(c, http.StatusNotFound, "plugin not found", nil)
		} else {
			respond(c, http.StatusInternalServerError, err.Error(), nil)
		}
		return nil, err
	}
	return plugin, nil
}

// coerceValues flattens submitted JSON values to strings: strings pass
// through, everything else keeps its JSON encoding (numbers, booleans,
// objects for json-typed fields).
func coerceValues(values map[string]interface{}) map[string]string {
	out := make(map[string]string, len(values))
	for key, raw := range values {
		if s, ok := raw.(string); ok {
			out[key] = s
			continue
		}
		data, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		out[key] = string(data)
	}
	return out
}
