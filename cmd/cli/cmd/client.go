package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"postflow/pkg/api"
)

// PostClient handles API calls to the postflow server.
type PostClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewPostClient creates a new client with the given base URL and token.
func NewPostClient(baseURL, token string) *PostClient {
	return &PostClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// doRequest sends one authenticated JSON request and decodes the
// response into out (when out is non-nil).
func (c *PostClient) doRequest(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// CreateContent sends POST /contents to register a content record.
func (c *PostClient) CreateContent(req api.CreateContentRequest) (*api.CreateContentResponse, error) {
	var result api.CreateContentResponse
	if err := c.doRequest(http.MethodPost, "/contents", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePost sends POST /posts to schedule a post.
func (c *PostClient) CreatePost(req api.CreatePostRequest) (*api.CreatePostResponse, error) {
	var result api.CreatePostResponse
	if err := c.doRequest(http.MethodPost, "/posts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPost sends GET /posts/{id} to retrieve post details.
func (c *PostClient) GetPost(postID string) (*api.PostResponse, error) {
	var result api.PostResponse
	if err := c.doRequest(http.MethodGet, fmt.Sprintf("/posts/%s", postID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPosts sends GET /posts with the given query filters.
func (c *PostClient) ListPosts(filters url.Values) ([]api.PostResponse, error) {
	path := "/posts"
	if len(filters) > 0 {
		path += "?" + filters.Encode()
	}

	var result api.ListPostsResponse
	if err := c.doRequest(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

// CancelPost sends POST /posts/{id}/cancel.
func (c *PostClient) CancelPost(postID string) error {
	return c.doRequest(http.MethodPost, fmt.Sprintf("/posts/%s/cancel", postID), nil, nil)
}

// ReschedulePost sends POST /posts/{id}/reschedule.
func (c *PostClient) ReschedulePost(postID string, at time.Time) error {
	req := api.RescheduleRequest{ScheduledAt: at}
	return c.doRequest(http.MethodPost, fmt.Sprintf("/posts/%s/reschedule", postID), req, nil)
}

// ApprovePost sends POST /posts/{id}/approve.
func (c *PostClient) ApprovePost(postID, approvedBy, notes string) error {
	req := api.ApproveRequest{ApprovedBy: approvedBy, Notes: notes}
	return c.doRequest(http.MethodPost, fmt.Sprintf("/posts/%s/approve", postID), req, nil)
}

// PreviewPost sends POST /posts/{id}/preview and returns the rendering.
func (c *PostClient) PreviewPost(postID string) (*api.PreviewResponse, error) {
	var result api.PreviewResponse
	if err := c.doRequest(http.MethodPost, fmt.Sprintf("/posts/%s/preview", postID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RetryPost sends POST /posts/{id}/retry to clear the retry timer.
func (c *PostClient) RetryPost(postID string) error {
	return c.doRequest(http.MethodPost, fmt.Sprintf("/posts/%s/retry", postID), nil, nil)
}
