package sources

import (
	"context"

	"github.com/sipwatch/sipwatch-bot/internal/models"
)

// NewsSource searches an industry news provider
type NewsSource interface {
	GetName() string
	IsEnabled() bool
	FetchNews(ctx context.Context) ([]models.NewsItem, error)
}

// SocialSource reads the monitored communities. Failures are reported per
// community inside the returned digests, in iteration order.
type SocialSource interface {
	GetName() string
	FetchSocial(ctx context.Context) []models.CommunityDigest
}
