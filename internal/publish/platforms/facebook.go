package platforms

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"postflow/internal/store"
)

const facebookDefaultBaseURL = "https://graph.facebook.com/v19.0"

// Facebook publishes page feed posts via the Graph API. The page id
// comes from the post's platform config; the access token is
// service-wide.
type Facebook struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

func NewFacebook(accessToken string) *Facebook {
	return &Facebook{
		BaseURL:     facebookDefaultBaseURL,
		AccessToken: accessToken,
		Client:      newHTTPClient(),
	}
}

func (f *Facebook) Platform() string { return "facebook" }

func (f *Facebook) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	pageID := config["page_id"]
	if pageID == "" {
		return "", &APIError{Platform: "facebook", StatusCode: http.StatusBadRequest, Reason: "page_id missing from platform config"}
	}

	body := map[string]interface{}{
		"message":      renderBody(content, "facebook"),
		"access_token": f.AccessToken,
	}
	if len(content.MediaURLs) > 0 {
		body["link"] = content.MediaURLs[0]
	}

	var resp struct {
		ID string `json:"id"`
	}
	url := fmt.Sprintf("%s/%s/feed", f.BaseURL, pageID)
	if err := postJSON(ctx, f.Client, "facebook", url, body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// renderBody joins the platform variant (or generic body) with the
// source hashtags, matching what the preview shows.
func renderBody(content *store.Content, platform string) string {
	body := content.Body
	if override, ok := content.Overrides[platform]; ok && override != "" {
		body = override
	}
	parts := []string{body}
	for _, h := range content.Hashtags {
		parts = append(parts, "#"+strings.TrimPrefix(h, "#"))
	}
	return strings.Join(parts, " ")
}
