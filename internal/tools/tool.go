// Package tools holds the dispatch registry and the builtin LMS toolsets.
// A tool is a named operation a caller invokes by name through the registry;
// tools validate their own arguments and reach external systems through the
// Requester contract in lms.go.
package tools

import (
	"context"
	"fmt"
)

// Tool is the single capability interface every registered operation
// implements.
type Tool interface {
	Name() string
	Description() string
	// Call runs the tool. A non-nil error is a domain error (bad arguments
	// or a failed outbound call); the dispatch boundary renders it as
	// ordinary error content, not as a protocol failure.
	Call(ctx context.Context, args map[string]interface{}) (*Result, error)
}

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is a successful tool outcome.
type Result struct {
	Content []Content `json:"content"`
}

// TextResult wraps plain text in a single-block result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

// MissingArgError reports a required argument that was not supplied.
type MissingArgError struct {
	Arg string
}

func (e *MissingArgError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Arg)
}

// InvalidArgError reports an argument that was supplied but unusable.
type InvalidArgError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Reason)
}

// stringArg pulls a required string argument out of the args map.
func stringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", &MissingArgError{Arg: key}
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", &InvalidArgError{Arg: key, Reason: "expected a non-empty string"}
	}
	return s, nil
}

type callerKey struct{}

// Caller identifies who is invoking a tool. Tools use it to load that
// user's plugin config for the outbound call.
type Caller struct {
	UserID string
}

// WithCaller attaches the caller identity to the dispatch context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom extracts the caller identity set by the dispatch boundary.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}
