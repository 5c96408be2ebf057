package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

// respond wraps every plugin/tool response in the uniform envelope.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"response_code":    status,
		"response_message": message,
		"data":             data,
	})
}

// currentUser pulls the authenticated user the middleware stashed on the
// context.
func currentUser(c *gin.Context) (models.User, bool) {
	uVal, ok := c.Get("user")
	if !ok {
		return models.User{}, false
	}
	user, ok := uVal.(models.User)
	return user, ok
}

var allowedRoles = map[string]struct{}{
	"admin": {},
	"user":  {},
}

func IsValidRole(role string) bool {
	_, ok := allowedRoles[role]
	return ok
}
