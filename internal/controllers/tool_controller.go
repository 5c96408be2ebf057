package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edly-io/sparkth-sub000/internal/tools"
	"github.com/edly-io/sparkth-sub000/internal/ws"
)

type ToolController struct {
	Registry *tools.Registry
	Hub      *ws.EventHub
}

type callToolRequest struct {
	ToolName string                 `json:"tool_name" binding:"required"`
	Args     map[string]interface{} `json:"args"`
}

// Call dispatches a named tool. An unknown tool name and a tool that ran
// and failed are both ordinary 200 responses carrying descriptive error
// content; only malformed requests use the error channel.
func (tc *ToolController) Call(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req callToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx := tools.WithCaller(c.Request.Context(), tools.Caller{UserID: user.UserID})
	result, found, err := tc.Registry.Dispatch(ctx, req.ToolName, req.Args)
	if !found {
		respond(c, http.StatusOK, "ok", gin.H{
			"is_error": true,
			"content":  []tools.Content{{Type: "text", Text: "tool not found: " + req.ToolName}},
		})
		return
	}
	if err != nil {
		respond(c, http.StatusOK, "ok", gin.H{
			"is_error": true,
			"content":  []tools.Content{{Type: "text", Text: "tool error: " + err.Error()}},
		})
		return
	}

	tc.Hub.Broadcast(ws.PluginEvent{
		Type:   ws.EventToolDispatched,
		Tool:   req.ToolName,
		UserID: user.UserID,
	})
	respond(c, http.StatusOK, "ok", gin.H{
		"is_error": false,
		"content":  result.Content,
	})
}

// List returns the registry's current tool-name snapshot.
func (tc *ToolController) List(c *gin.Context) {
	respond(c, http.StatusOK, "ok", gin.H{"tools": tc.Registry.List()})
}
