package analysis

import "fmt"

const (
	newsSectionLabel   = "=== INDUSTRY NEWS ==="
	socialSectionLabel = "=== SOCIAL SENTIMENT (REDDIT) ==="
)

const watchdogPrompt = `You are SIP WATCH, a 24/7 beverage industry watchdog.
Analyze the following raw data streams for RTD spirits, wine, and energy drinks.

Identify:
1. Emerging Trends
2. Competitor Moves
3. Viral Sentiments
4. Sales/Forecasting implications (based on news)

RAW DATA:
%s
%s

%s
%s

Output a concise, professional executive summary suitable for email.
Include a 'Watchlist' of brands or keywords gaining traction.`

// BuildPrompt embeds both digests verbatim under their section labels
func BuildPrompt(newsText, socialText string) string {
	return fmt.Sprintf(watchdogPrompt, newsSectionLabel, newsText, socialSectionLabel, socialText)
}
