package models

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem is a single article returned by the news search API
type NewsItem struct {
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	URL        string `json:"url"`
}

// Line renders the item the way it is handed to the summarizer
func (n NewsItem) Line() string {
	return fmt.Sprintf("- %s (%s): %s", n.Title, n.SourceName, n.URL)
}

// SocialPost is a single post from a community "hot" listing
type SocialPost struct {
	Community string `json:"community"`
	Title     string `json:"title"`
	Score     int    `json:"score"` // upvotes
}

func (p SocialPost) Line() string {
	return fmt.Sprintf("- %s (Score: %d)", p.Title, p.Score)
}

// CommunityDigest is the outcome of reading one community listing.
// Exactly one of Posts (Status 200), a non-200 Status or Err is meaningful.
type CommunityDigest struct {
	Community string       `json:"community"`
	Status    int          `json:"status"`
	Posts     []SocialPost `json:"posts"`
	Err       error        `json:"-"`
}

// Skipped reports whether the listing answered with a non-200 status
func (d CommunityDigest) Skipped() bool {
	return d.Err == nil && d.Status != 200
}

// Header is the section title for the community
func (d CommunityDigest) Header() string {
	return fmt.Sprintf("--- r/%s ---", d.Community)
}

// NotificationResult is the outcome of an email submission
type NotificationResult struct {
	Delivered bool   `json:"delivered"`
	Detail    string `json:"detail"` // provider response
}

// Execution is the rendered outcome of one pipeline run
type Execution struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	News        string        `json:"news"`
	Social      string        `json:"social"`
	Report      string        `json:"report"`
	EmailStatus string        `json:"email_status"`
}

// Summary is the plain-text payload returned to the trigger
func (e *Execution) Summary() string {
	var b strings.Builder
	b.WriteString("Execution Complete.\n\n")
	b.WriteString("Email Status: ")
	b.WriteString(e.EmailStatus)
	b.WriteString("\n\nReport:\n")
	b.WriteString(e.Report)
	return b.String()
}
