package tools

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProvider struct {
	configs map[string]map[string]string // plugin name -> config
}

func (s *stubProvider) PluginConfig(ctx context.Context, userID, pluginName string) (map[string]string, error) {
	config, ok := s.configs[pluginName]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return config, nil
}

type stubRequester struct {
	lastMethod string
	lastPath   string
	lastQuery  url.Values
	resp       Response
	err        error
}

func (s *stubRequester) Request(ctx context.Context, method, path string, query url.Values, body interface{}) (Response, error) {
	s.lastMethod = method
	s.lastPath = path
	s.lastQuery = query
	if s.err != nil {
		return Response{}, s.err
	}
	return s.resp, nil
}

func canvasSetup(resp Response, err error) (*Registry, *stubRequester) {
	requester := &stubRequester{resp: resp, err: err}
	provider := &stubProvider{configs: map[string]map[string]string{
		CanvasPluginName: {
			"base_url":  "https://canvas.example.com",
			"api_token": "tok",
		},
	}}
	reg := NewRegistry()
	for _, tool := range NewCanvasTools(provider, func(baseURL, token string) Requester { return requester }) {
		reg.Register(tool)
	}
	return reg, requester
}

func callerCtx() context.Context {
	return WithCaller(context.Background(), Caller{UserID: "user-1"})
}

func TestCanvasListCourses(t *testing.T) {
	reg, requester := canvasSetup(Response{List: []map[string]interface{}{{"id": float64(1), "name": "Biology"}}}, nil)

	result, found, err := reg.Dispatch(callerCtx(), "canvas_list_courses", nil)
	require.True(t, found)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/courses", requester.lastPath)
	require.Equal(t, "50", requester.lastQuery.Get("per_page"))
	require.Contains(t, result.Content[0].Text, "Biology")
}

func TestCanvasCourseDetails_ArgValidation(t *testing.T) {
	reg, _ := canvasSetup(Response{Object: map[string]interface{}{"id": float64(7)}}, nil)

	t.Run("MissingArg", func(t *testing.T) {
		_, found, err := reg.Dispatch(callerCtx(), "canvas_course_details", nil)
		require.True(t, found)
		var missing *MissingArgError
		require.ErrorAs(t, err, &missing)
		require.Equal(t, "course_id", missing.Arg)
	})

	t.Run("InvalidArg", func(t *testing.T) {
		_, found, err := reg.Dispatch(callerCtx(), "canvas_course_details", map[string]interface{}{"course_id": 7})
		require.True(t, found)
		var invalid *InvalidArgError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("Valid", func(t *testing.T) {
		reg, requester := canvasSetup(Response{Object: map[string]interface{}{"id": float64(7)}}, nil)
		_, found, err := reg.Dispatch(callerCtx(), "canvas_course_details", map[string]interface{}{"course_id": "7"})
		require.True(t, found)
		require.NoError(t, err)
		require.Equal(t, "/api/v1/courses/7", requester.lastPath)
	})
}

func TestCanvasTool_NotInstalled(t *testing.T) {
	provider := &stubProvider{configs: map[string]map[string]string{}}
	reg := NewRegistry()
	for _, tool := range NewCanvasTools(provider, func(baseURL, token string) Requester { return &stubRequester{} }) {
		reg.Register(tool)
	}

	_, found, err := reg.Dispatch(callerCtx(), "canvas_list_courses", nil)
	require.True(t, found)
	require.ErrorContains(t, err, "not installed")
}

func TestCanvasTool_MissingCaller(t *testing.T) {
	reg, _ := canvasSetup(Response{}, nil)
	_, found, err := reg.Dispatch(context.Background(), "canvas_list_courses", nil)
	require.True(t, found)
	require.ErrorContains(t, err, "caller")
}

func TestCanvasTool_TransportErrorSurfaced(t *testing.T) {
	reg, _ := canvasSetup(Response{}, &RequestError{Status: 502, Message: "bad gateway"})
	_, found, err := reg.Dispatch(callerCtx(), "canvas_list_courses", nil)
	require.True(t, found)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, 502, reqErr.Status)
}

func TestOpenEdXTools(t *testing.T) {
	requester := &stubRequester{resp: Response{Object: map[string]interface{}{"results": []interface{}{}}}}
	provider := &stubProvider{configs: map[string]map[string]string{
		OpenEdXPluginName: {
			"base_url":  "https://lms.example.com",
			"api_token": "tok",
		},
	}}
	reg := NewRegistry()
	for _, tool := range NewOpenEdXTools(provider, func(baseURL, token string) Requester { return requester }) {
		reg.Register(tool)
	}

	_, found, err := reg.Dispatch(callerCtx(), "openedx_list_courses", nil)
	require.True(t, found)
	require.NoError(t, err)
	require.Equal(t, "/api/courses/v1/courses/", requester.lastPath)

	_, found, err = reg.Dispatch(callerCtx(), "openedx_course_details", map[string]interface{}{"course_key": "course-v1:edX+DemoX+2026"})
	require.True(t, found)
	require.NoError(t, err)
	require.Equal(t, "/api/courses/v1/courses/course-v1:edX+DemoX+2026/", requester.lastPath)
}
