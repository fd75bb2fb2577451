package platforms

import (
	"context"
	"net/http"

	"postflow/internal/store"
)

const youtubeDefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTube publishes community posts / video metadata updates. Like the
// other adapters this is a thin client; upload-by-URL is delegated to
// the platform side.
type YouTube struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

func NewYouTube(accessToken string) *YouTube {
	return &YouTube{
		BaseURL:     youtubeDefaultBaseURL,
		AccessToken: accessToken,
		Client:      newHTTPClient(),
	}
}

func (y *YouTube) Platform() string { return "youtube" }

func (y *YouTube) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	channelID := config["channel_id"]
	if channelID == "" {
		return "", &APIError{Platform: "youtube", StatusCode: http.StatusBadRequest, Reason: "channel_id missing from platform config"}
	}

	body := map[string]interface{}{
		"snippet": map[string]interface{}{
			"channelId":   channelID,
			"description": renderBody(content, "youtube"),
			"title":       orDefault(config["title"], firstLine(content.Body)),
		},
		"status": map[string]string{
			"privacyStatus": orDefault(config["privacy_status"], "public"),
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	client := *y.Client
	client.Transport = bearerTransport{base: y.Client.Transport, token: y.AccessToken}
	if err := postJSON(ctx, &client, "youtube", y.BaseURL+"/activities?part=snippet,status", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	if len(s) > 100 {
		return s[:100]
	}
	return s
}
