package publish

import (
	"strings"
	"unicode/utf8"

	"postflow/internal/store"
)

// Character limits per platform, enforced advisorily at preview time so
// scheduling catches most constraint violations before dispatch.
var charLimits = map[string]int{
	"facebook":  63206,
	"instagram": 2200,
	"twitter":   280,
	"linkedin":  3000,
	"tiktok":    2200,
	"youtube":   5000,
}

// Rough audience baselines used for the estimated-reach figure. The
// number is informational; it feeds the approval workflow only.
var reachBaselines = map[string]int{
	"facebook":  1200,
	"instagram": 950,
	"twitter":   640,
	"linkedin":  480,
	"tiktok":    1500,
	"youtube":   800,
}

const defaultCharLimit = 2000

// GeneratePreview derives the per-platform rendering of a post: the
// platform-specific content variant (generic body if no override is
// set), hashtags and mentions from the source content, a character
// count against the platform limit, and an estimated reach.
func GeneratePreview(post *store.ScheduledPost, content *store.Content) map[string]store.PlatformPreview {
	previews := make(map[string]store.PlatformPreview, len(post.Platforms))
	for _, platform := range post.Platforms {
		previews[platform] = previewFor(platform, content)
	}
	return previews
}

func previewFor(platform string, content *store.Content) store.PlatformPreview {
	body := content.Body
	if override, ok := content.Overrides[platform]; ok && override != "" {
		body = override
	}
	rendered := render(body, content.Hashtags, content.Mentions)

	limit, ok := charLimits[platform]
	if !ok {
		limit = defaultCharLimit
	}
	count := utf8.RuneCountInString(rendered)

	return store.PlatformPreview{
		Content:        rendered,
		CharCount:      count,
		CharLimit:      limit,
		WithinLimit:    count <= limit,
		EstimatedReach: estimateReach(platform, content),
		Hashtags:       content.Hashtags,
		Mentions:       content.Mentions,
	}
}

func render(body string, hashtags, mentions []string) string {
	var b strings.Builder
	b.WriteString(body)
	for _, m := range mentions {
		b.WriteString(" @")
		b.WriteString(strings.TrimPrefix(m, "@"))
	}
	for _, h := range hashtags {
		b.WriteString(" #")
		b.WriteString(strings.TrimPrefix(h, "#"))
	}
	return b.String()
}

func estimateReach(platform string, content *store.Content) int {
	base, ok := reachBaselines[platform]
	if !ok {
		base = 500
	}
	// Hashtags widen discovery, media widens engagement.
	reach := base + 75*len(content.Hashtags) + 150*len(content.MediaURLs)
	return reach
}
