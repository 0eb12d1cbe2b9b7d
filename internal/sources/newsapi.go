package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/sirupsen/logrus"
)

const (
	// NewsAdvisory replaces the news digest when no key is configured
	NewsAdvisory = "No NewsAPI Key provided. Skipping news fetch."

	maxNewsItems = 10
)

// NewsAPISource implements the newsapi.org "everything" search
type NewsAPISource struct {
	apiKey  string
	baseURL string
	query   string
	client  *resty.Client
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source *struct {
			Name *string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// NewNewsAPISource creates a new NewsAPI source
func NewNewsAPISource(apiKey, baseURL, query string, timeout time.Duration) *NewsAPISource {
	return &NewsAPISource{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		query:   query,
		client:  resty.New().SetTimeout(timeout),
	}
}

func (n *NewsAPISource) GetName() string {
	return "newsapi"
}

func (n *NewsAPISource) IsEnabled() bool {
	return n.apiKey != ""
}

// FetchNews returns the most recent articles matching the beverage query,
// capped at ten and kept in response order.
func (n *NewsAPISource) FetchNews(ctx context.Context) ([]models.NewsItem, error) {
	if !n.IsEnabled() {
		logrus.Debug("NewsAPI source disabled - missing API key")
		return nil, outcome.Missing(NewsAdvisory)
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        n.query,
			"sortBy":   "publishedAt",
			"language": "en",
			"apiKey":   n.apiKey,
		}).
		Get(n.baseURL + "/everything")

	if err != nil {
		return nil, outcome.Network(redactURL(err))
	}

	var searchResp newsAPIResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		if resp.IsError() {
			return nil, outcome.Network(fmt.Errorf("newsapi returned status %d", resp.StatusCode()))
		}
		return nil, outcome.Parse(fmt.Errorf("failed to decode newsapi response: %w", err))
	}

	if resp.IsError() {
		return nil, outcome.Network(fmt.Errorf("newsapi returned status %d: %s", resp.StatusCode(), searchResp.Message))
	}

	articles := searchResp.Articles
	if len(articles) > maxNewsItems {
		articles = articles[:maxNewsItems]
	}

	items := make([]models.NewsItem, 0, len(articles))
	for i, a := range articles {
		if a.Source == nil || a.Source.Name == nil {
			return nil, outcome.Parse(fmt.Errorf("article %d has no source name", i))
		}
		items = append(items, models.NewsItem{
			Title:      a.Title,
			SourceName: *a.Source.Name,
			URL:        a.URL,
		})
	}

	return items, nil
}

// redactURL strips the request URL from transport errors; it carries the API key.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request failed: %w", strings.ToUpper(uerr.Op), uerr.Err)
	}
	return err
}
