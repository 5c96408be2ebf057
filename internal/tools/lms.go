package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Requester is the opaque contract tools use to reach an external LMS.
// Responses are normalized to a single object or an array of objects.
type Requester interface {
	Request(ctx context.Context, method, path string, query url.Values, body interface{}) (Response, error)
}

// Response is a normalized LMS reply. Exactly one of Object/List is set.
type Response struct {
	Object map[string]interface{}
	List   []map[string]interface{}
}

// RequestError is a failed outbound call: a transport error or a non-2xx
// status from the LMS.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("lms request failed: status %d: %s", e.Status, e.Message)
	}
	return "lms request failed: " + e.Message
}

// LMSClient is the HTTP implementation of Requester, pointed at one LMS
// instance with one user's bearer token.
type LMSClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewLMSClient(baseURL, token string) *LMSClient {
	return &LMSClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *LMSClient) Request(ctx context.Context, method, path string, query url.Values, body interface{}) (Response, error) {
	endpoint := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Response{}, &RequestError{Message: "encode body: " + err.Error()}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return Response{}, &RequestError{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Response{}, &RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &RequestError{Message: "read body: " + err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &RequestError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return normalize(data)
}

// normalize maps a raw JSON body onto the object-or-array shape.
func normalize(data []byte) (Response, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Response{Object: map[string]interface{}{}}, nil
	}
	if trimmed[0] == '[' {
		var list []map[string]interface{}
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return Response{}, &RequestError{Message: "decode response: " + err.Error()}
		}
		return Response{List: list}, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Response{}, &RequestError{Message: "decode response: " + err.Error()}
	}
	return Response{Object: obj}, nil
}

// renderResponse turns a normalized response back into pretty JSON text for
// tool result content.
func renderResponse(resp Response) (string, error) {
	var payload interface{}
	if resp.List != nil {
		payload = resp.List
	} else {
		payload = resp.Object
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
