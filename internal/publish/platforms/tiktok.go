package platforms

import (
	"context"
	"net/http"

	"postflow/internal/store"
)

const tiktokDefaultBaseURL = "https://open.tiktokapis.com/v2"

// TikTok publishes video posts via the content posting API. Video-only:
// the first media URL is the video source.
type TikTok struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

func NewTikTok(accessToken string) *TikTok {
	return &TikTok{
		BaseURL:     tiktokDefaultBaseURL,
		AccessToken: accessToken,
		Client:      newHTTPClient(),
	}
}

func (t *TikTok) Platform() string { return "tiktok" }

func (t *TikTok) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	if len(content.MediaURLs) == 0 {
		return "", &APIError{Platform: "tiktok", StatusCode: http.StatusBadRequest, Reason: "tiktok requires a video url"}
	}

	body := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":           renderBody(content, "tiktok"),
			"privacy_level":   orDefault(config["privacy_level"], "PUBLIC_TO_EVERYONE"),
			"disable_comment": false,
		},
		"source_info": map[string]interface{}{
			"source":    "PULL_FROM_URL",
			"video_url": content.MediaURLs[0],
		},
	}

	var resp struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	client := *t.Client
	client.Transport = bearerTransport{base: t.Client.Transport, token: t.AccessToken}
	if err := postJSON(ctx, &client, "tiktok", t.BaseURL+"/post/publish/video/init/", body, &resp); err != nil {
		return "", err
	}
	return resp.Data.PublishID, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
