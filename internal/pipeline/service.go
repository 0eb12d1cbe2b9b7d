package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sipwatch/sipwatch-bot/internal/analysis"
	"github.com/sipwatch/sipwatch-bot/internal/config"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sipwatch/sipwatch-bot/internal/notifications"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/sipwatch/sipwatch-bot/internal/sources"
	"github.com/sirupsen/logrus"
)

// Stage identifies a finished step of a run
type Stage string

const (
	StageCollect Stage = "collect"
	StageAnalyze Stage = "analyze"
	StageNotify  Stage = "notify"
)

// StageHook is called after each stage with the execution filled in so far
type StageHook func(stage Stage, exec *models.Execution)

// Service runs the collect, summarize and notify stages in order
type Service struct {
	news     sources.NewsSource
	social   sources.SocialSource
	analyzer analysis.Analyzer
	notifier notifications.NotificationInterface
	hook     StageHook
}

// NewService creates a new pipeline service wired from configuration
func NewService(cfg *config.Config, notifier notifications.NotificationInterface) *Service {
	return &Service{
		news:     sources.NewNewsAPISource(cfg.NewsAPIKey, cfg.NewsAPIURL, cfg.NewsQuery, cfg.HTTPTimeout),
		social:   sources.NewRedditSource(cfg.RedditBaseURL, cfg.RedditUserAgent, cfg.Subreddits, cfg.HTTPTimeout),
		analyzer: analysis.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.GeminiTimeout),
		notifier: notifier,
	}
}

// OnStage registers a hook for stage progress
func (s *Service) OnStage(hook StageHook) *Service {
	s.hook = hook
	return s
}

// Run executes one invocation. Every stage failure is rendered into the
// execution text; Run itself never fails.
func (s *Service) Run(ctx context.Context) *models.Execution {
	exec := &models.Execution{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := logrus.WithField("run_id", exec.RunID)
	log.Info("Starting pipeline run")

	// 1. Collect
	items, err := s.news.FetchNews(ctx)
	logStage(log, "news", err).Infof("Collected %d news items", len(items))
	exec.News = sources.RenderNews(items, err)

	digests := s.social.FetchSocial(ctx)
	log.WithField("stage", "social").Infof("Read %d communities", len(digests))
	exec.Social = sources.RenderSocial(digests)
	s.finished(StageCollect, exec)

	// 2. Summarize
	report, err := s.analyzer.Analyze(ctx, exec.News, exec.Social)
	logStage(log, "analysis", err).Info("Analysis finished")
	exec.Report = outcome.Render(report, err, "Gemini Analysis Failed")
	s.finished(StageAnalyze, exec)

	// 3. Notify
	result, err := s.notifier.Send(ctx, exec.Report)
	logStage(log, "notification", err).Info("Notification finished")
	exec.EmailStatus = notifications.RenderStatus(result, err)

	exec.Duration = time.Since(exec.StartedAt)
	s.finished(StageNotify, exec)
	log.Infof("Pipeline run completed in %v", exec.Duration)
	return exec
}

// RunScheduled runs the pipeline outside an HTTP request
func (s *Service) RunScheduled(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	exec := s.Run(ctx)
	logrus.WithFields(logrus.Fields{
		"run_id":       exec.RunID,
		"email_status": exec.EmailStatus,
	}).Info("Scheduled pipeline run finished")
}

func (s *Service) finished(stage Stage, exec *models.Execution) {
	if s.hook != nil {
		s.hook(stage, exec)
	}
}

func logStage(log *logrus.Entry, stage string, err error) *logrus.Entry {
	entry := log.WithField("stage", stage)
	if err != nil {
		kind := outcome.KindOf(err)
		entry = entry.WithField("kind", kind)
		if kind != outcome.MissingCredential {
			entry.Warnf("Stage degraded: %v", err)
		}
	}
	return entry
}
