// Package platforms contains the per-platform publish adapters. Each
// adapter is a small HTTP client with its own request shape; the
// engine treats them as external collaborators behind the
// publish.Adapter interface. Adding a platform means adding one
// adapter here and registering it at startup.
package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is the typed failure an adapter reports: the platform, the
// HTTP status and a human-readable reason from the platform response.
type APIError struct {
	Platform   string
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Platform, e.Reason, e.StatusCode)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// postJSON sends a JSON body and decodes the JSON response into out.
// Non-2xx responses become an *APIError carrying the platform's error
// text.
func postJSON(ctx context.Context, client *http.Client, platform, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", platform, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", platform, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		reason := extractErrorReason(data)
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return &APIError{Platform: platform, StatusCode: resp.StatusCode, Reason: reason}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", platform, err)
		}
	}
	return nil
}

// extractErrorReason pulls a message out of the common error envelopes
// the platforms use ({"error":{"message":...}}, {"error":"..."},
// {"message":"..."}).
func extractErrorReason(data []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Error) == 0 {
		return ""
	}
	var asString string
	if json.Unmarshal(envelope.Error, &asString) == nil {
		return asString
	}
	var asObject struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &asObject) == nil {
		return asObject.Message
	}
	return ""
}
