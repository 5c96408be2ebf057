package tools

import (
	"context"
	"net/http"
	"net/url"
)

// CanvasPluginName is the manifest name the Canvas toolset is tied to.
const CanvasPluginName = "canvas_lms"

// NewCanvasTools builds the builtin Canvas toolset. newClient may be nil,
// in which case the HTTP client is used.
func NewCanvasTools(configs ConfigProvider, newClient func(baseURL, token string) Requester) []Tool {
	if newClient == nil {
		newClient = defaultClient
	}
	return []Tool{
		&lmsTool{
			name:        "canvas_list_courses",
			description: "List the caller's Canvas courses",
			plugin:      CanvasPluginName,
			configs:     configs,
			newClient:   newClient,
			run: func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error) {
				query := url.Values{}
				query.Set("per_page", "50")
				return lms.Request(ctx, http.MethodGet, "/api/v1/courses", query, nil)
			},
		},
		&lmsTool{
			name:        "canvas_course_details",
			description: "Fetch one Canvas course by id",
			plugin:      CanvasPluginName,
			configs:     configs,
			newClient:   newClient,
			run: func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error) {
				courseID, err := stringArg(args, "course_id")
				if err != nil {
					return Response{}, err
				}
				return lms.Request(ctx, http.MethodGet, "/api/v1/courses/"+url.PathEscape(courseID), nil, nil)
			},
		},
		&lmsTool{
			name:        "canvas_list_assignments",
			description: "List assignments for a Canvas course",
			plugin:      CanvasPluginName,
			configs:     configs,
			newClient:   newClient,
			run: func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error) {
				courseID, err := stringArg(args, "course_id")
				if err != nil {
					return Response{}, err
				}
				path := "/api/v1/courses/" + url.PathEscape(courseID) + "/assignments"
				return lms.Request(ctx, http.MethodGet, path, nil, nil)
			},
		},
	}
}
