package sources

import (
	"fmt"
	"strings"

	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
)

// RenderNews renders a news fetch as the digest text handed to the summarizer
func RenderNews(items []models.NewsItem, err error) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	return outcome.Render(strings.Join(lines, "\n"), err, "Error fetching news")
}

// RenderSocial renders community digests in order. Non-200 listings produce
// no output at all; failed requests produce a single error line.
func RenderSocial(digests []models.CommunityDigest) string {
	var lines []string

	for _, d := range digests {
		switch {
		case d.Err != nil:
			lines = append(lines, fmt.Sprintf("Error reading r/%s: %v", d.Community, d.Err))
		case d.Skipped():
			continue
		default:
			lines = append(lines, d.Header())
			for _, post := range d.Posts {
				lines = append(lines, post.Line())
			}
		}
	}

	return strings.Join(lines, "\n")
}
