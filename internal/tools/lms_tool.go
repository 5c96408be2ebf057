package tools

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ConfigProvider hands a tool the calling user's stored config for the
// plugin the tool belongs to. Implemented by the plugins package.
type ConfigProvider interface {
	PluginConfig(ctx context.Context, userID, pluginName string) (map[string]string, error)
}

// lmsTool is the common shape of the builtin LMS tools: resolve the caller's
// plugin config, build a client, run one request, render the reply.
type lmsTool struct {
	name        string
	description string
	plugin      string
	configs     ConfigProvider
	newClient   func(baseURL, token string) Requester
	run         func(ctx context.Context, lms Requester, args map[string]interface{}) (Response, error)
}

func (t *lmsTool) Name() string        { return t.name }
func (t *lmsTool) Description() string { return t.description }

func (t *lmsTool) Call(ctx context.Context, args map[string]interface{}) (*Result, error) {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return nil, errors.New("no caller identity on context")
	}

	config, err := t.configs.PluginConfig(ctx, caller.UserID, t.plugin)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plugin %s is not installed for this user", t.plugin)
		}
		return nil, err
	}

	baseURL := config["base_url"]
	token := config["api_token"]
	if baseURL == "" || token == "" {
		return nil, fmt.Errorf("plugin %s is missing base_url or api_token config", t.plugin)
	}

	lms := t.newClient(baseURL, token)
	resp, err := t.run(ctx, lms, args)
	if err != nil {
		return nil, err
	}
	text, err := renderResponse(resp)
	if err != nil {
		return nil, err
	}
	return TextResult(text), nil
}

func defaultClient(baseURL, token string) Requester {
	return NewLMSClient(baseURL, token)
}
