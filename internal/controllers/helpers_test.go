package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edly-io/sparkth-sub000/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Plugin{},
		&models.ConfigFieldSchema{},
		&models.UserPluginInstallation{},
		&models.UserConfigValue{},
	))
	return db
}

// testContext builds a gin context with an authenticated user and an optional
// JSON body, the way the auth middleware leaves it for controllers.
func testContext(t *testing.T, method string, body interface{}, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, "/", reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	c.Request = req
	c.Params = params
	c.Set("user", models.User{ID: 1, UserID: "user-1", Role: "user", Active: true})
	return c, rec
}

type envelope struct {
	ResponseCode    int                    `json:"response_code"`
	ResponseMessage string                 `json:"response_message"`
	Data            map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
