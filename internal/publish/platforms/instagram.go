package platforms

import (
	"context"
	"fmt"
	"net/http"

	"postflow/internal/store"
)

const instagramDefaultBaseURL = "https://graph.facebook.com/v19.0"

// Instagram publishes media posts through the Graph API container
// flow: create a media container, then publish it. Instagram requires
// media; a text-only content record is rejected by the platform.
type Instagram struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

func NewInstagram(accessToken string) *Instagram {
	return &Instagram{
		BaseURL:     instagramDefaultBaseURL,
		AccessToken: accessToken,
		Client:      newHTTPClient(),
	}
}

func (i *Instagram) Platform() string { return "instagram" }

func (i *Instagram) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	accountID := config["account_id"]
	if accountID == "" {
		return "", &APIError{Platform: "instagram", StatusCode: http.StatusBadRequest, Reason: "account_id missing from platform config"}
	}
	if len(content.MediaURLs) == 0 {
		return "", &APIError{Platform: "instagram", StatusCode: http.StatusBadRequest, Reason: "instagram requires at least one media url"}
	}

	var container struct {
		ID string `json:"id"`
	}
	err := postJSON(ctx, i.Client, "instagram", fmt.Sprintf("%s/%s/media", i.BaseURL, accountID), map[string]interface{}{
		"image_url":    content.MediaURLs[0],
		"caption":      renderBody(content, "instagram"),
		"access_token": i.AccessToken,
	}, &container)
	if err != nil {
		return "", err
	}

	var published struct {
		ID string `json:"id"`
	}
	err = postJSON(ctx, i.Client, "instagram", fmt.Sprintf("%s/%s/media_publish", i.BaseURL, accountID), map[string]interface{}{
		"creation_id":  container.ID,
		"access_token": i.AccessToken,
	}, &published)
	if err != nil {
		return "", err
	}
	return published.ID, nil
}
