package platforms

import (
	"context"
	"net/http"

	"postflow/internal/store"
)

const linkedinDefaultBaseURL = "https://api.linkedin.com/v2"

// LinkedIn publishes UGC posts for an organization or member URN taken
// from the platform config.
type LinkedIn struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

func NewLinkedIn(accessToken string) *LinkedIn {
	return &LinkedIn{
		BaseURL:     linkedinDefaultBaseURL,
		AccessToken: accessToken,
		Client:      newHTTPClient(),
	}
}

func (l *LinkedIn) Platform() string { return "linkedin" }

func (l *LinkedIn) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	author := config["author_urn"]
	if author == "" {
		return "", &APIError{Platform: "linkedin", StatusCode: http.StatusBadRequest, Reason: "author_urn missing from platform config"}
	}

	body := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]string{
					"text": renderBody(content, "linkedin"),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	client := *l.Client
	client.Transport = bearerTransport{base: l.Client.Transport, token: l.AccessToken}
	if err := postJSON(ctx, &client, "linkedin", l.BaseURL+"/ugcPosts", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
