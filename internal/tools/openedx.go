package tools

import (
	"context"
	"net/http"
	"net/url"
)

// OpenEdXPluginName is the manifest name the Open edX toolset is tied to.
const OpenEdXPluginName = "open_edx"

// NewOpenEdXTools builds the builtin Open edX toolset.
func NewOpenEdXTools(configs ConfigProvider, newClient func(baseURL, token string) Requester) []Tool {
	if newClient == nil {
		newClient = defaultClient
	}
	return []Tool{
		&lmsTool{
			name:        "openedx_list_courses",
			description: "List courses on the configured Open edX instance",
			plugin:      OpenEdXPluginName,
			configs:     configs,
			newClient:   newClient,
			run: func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error) {
				return lms.Request(ctx, http.MethodGet, "/api/courses/v1/courses/", nil, nil)
			},
		},
		&lmsTool{
			name:        "openedx_course_details",
			description: "Fetch one Open edX course by course key",
			plugin:      OpenEdXPluginName,
			configs:     configs,
			newClient:   newClient,
			run: func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error) {
				courseKey, err := stringArg(args, "course_key")
				if err != nil {
					return Response{}, err
				}
				path := "/api/courses/v1/courses/" + url.PathEscape(courseKey) + "/"
				return lms.Request(ctx, http.MethodGet, path, nil, nil)
			},
		},
	}
}
