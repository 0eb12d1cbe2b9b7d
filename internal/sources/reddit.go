package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sirupsen/logrus"
)

const postsPerCommunity = 5

// RedditSource reads the public "hot" listing of each monitored subreddit
type RedditSource struct {
	baseURL    string
	userAgent  string
	subreddits []string
	client     *resty.Client
}

type redditListingResponse struct {
	Data *struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

// NewRedditSource creates a new Reddit source. Anonymous access to the
// listing endpoints requires a custom User-Agent.
func NewRedditSource(baseURL, userAgent string, subreddits []string, timeout time.Duration) *RedditSource {
	return &RedditSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		subreddits: subreddits,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

// FetchSocial reads every subreddit in order. One community failing never
// stops the others.
func (r *RedditSource) FetchSocial(ctx context.Context) []models.CommunityDigest {
	digests := make([]models.CommunityDigest, 0, len(r.subreddits))

	for _, subreddit := range r.subreddits {
		digest := r.fetchSubreddit(ctx, subreddit)

		log := logrus.WithFields(logrus.Fields{"community": subreddit, "status": digest.Status})
		switch {
		case digest.Err != nil:
			log.Errorf("Failed to read subreddit: %v", digest.Err)
		case digest.Skipped():
			log.Warn("Subreddit listing returned non-200 status, skipping")
		default:
			log.Debugf("Read %d posts", len(digest.Posts))
		}

		digests = append(digests, digest)
	}

	return digests
}

func (r *RedditSource) fetchSubreddit(ctx context.Context, subreddit string) models.CommunityDigest {
	digest := models.CommunityDigest{Community: subreddit}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", postsPerCommunity)).
		Get(fmt.Sprintf("%s/r/%s/hot.json", r.baseURL, subreddit))

	if err != nil {
		digest.Err = err
		return digest
	}

	digest.Status = resp.StatusCode()
	if digest.Status != http.StatusOK {
		return digest
	}

	var listing redditListingResponse
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		digest.Err = fmt.Errorf("failed to decode listing: %w", err)
		return digest
	}
	if listing.Data == nil || listing.Data.Children == nil {
		digest.Err = fmt.Errorf("unexpected listing shape: missing data.children")
		return digest
	}

	for _, child := range listing.Data.Children {
		if len(digest.Posts) == postsPerCommunity {
			break
		}
		digest.Posts = append(digest.Posts, models.SocialPost{
			Community: subreddit,
			Title:     child.Data.Title,
			Score:     child.Data.Score,
		})
	}

	return digest
}
