package platforms

import (
	"context"
	"net/http"

	"postflow/internal/store"
)

const twitterDefaultBaseURL = "https://api.twitter.com/2"

// Twitter publishes tweets via the v2 API with a bearer token.
type Twitter struct {
	BaseURL     string
	BearerToken string
	Client      *http.Client
}

func NewTwitter(bearerToken string) *Twitter {
	return &Twitter{
		BaseURL:     twitterDefaultBaseURL,
		BearerToken: bearerToken,
		Client:      newHTTPClient(),
	}
}

func (t *Twitter) Platform() string { return "twitter" }

func (t *Twitter) Publish(ctx context.Context, content *store.Content, config map[string]string) (string, error) {
	body := map[string]interface{}{
		"text": renderBody(content, "twitter"),
	}
	if replyTo := config["reply_to"]; replyTo != "" {
		body["reply"] = map[string]string{"in_reply_to_tweet_id": replyTo}
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := t.post(ctx, t.BaseURL+"/tweets", body, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

func (t *Twitter) post(ctx context.Context, url string, body, out interface{}) error {
	// The v2 API authenticates with a bearer header rather than a
	// token field in the payload.
	client := t.Client
	wrapped := *client
	wrapped.Transport = bearerTransport{base: client.Transport, token: t.BearerToken}
	return postJSON(ctx, &wrapped, "twitter", url, body, out)
}

type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	rt := b.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}
