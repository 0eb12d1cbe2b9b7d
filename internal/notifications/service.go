package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/sipwatch/sipwatch-bot/internal/config"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sipwatch/sipwatch-bot/internal/outcome"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const (
	ResendAdvisory = "Email configuration missing (Resend API Key or Recipient)."
	SMTPAdvisory   = "Email configuration missing (SMTP Host or Recipient)."

	subjectLayout = "2006-01-02 15:04"
)

var (
	reportTemplate = template.Must(template.New("report").Parse(`<pre>{{.}}</pre>`))
	validate       = validator.New()
)

// Service delivers reports by email through Resend or SMTP
type Service struct {
	config   *config.Config
	client   *resty.Client
	location *time.Location
	now      func() time.Time
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config:   cfg,
		client:   resty.New().SetTimeout(cfg.HTTPTimeout),
		location: cfg.Location(),
		now:      time.Now,
	}
}

// Send emails the report to the configured recipient
func (s *Service) Send(ctx context.Context, report string) (*models.NotificationResult, error) {
	subject := s.subject()

	htmlBody, err := buildEmailHTML(report)
	if err != nil {
		return nil, fmt.Errorf("failed to build email HTML: %w", err)
	}

	var result *models.NotificationResult
	switch s.config.EmailProvider {
	case "smtp":
		result, err = s.sendSMTP(subject, htmlBody)
	default:
		result, err = s.sendResend(ctx, subject, htmlBody)
	}

	if err != nil {
		if outcome.KindOf(err) != outcome.MissingCredential {
			logrus.Errorf("Failed to send email notification: %v", err)
		}
		return nil, err
	}

	logrus.WithField("provider", s.config.EmailProvider).Info("Successfully sent report via email")
	return result, nil
}

// RenderStatus renders a delivery outcome for the execution summary
func RenderStatus(result *models.NotificationResult, err error) string {
	if err != nil {
		return outcome.Render("", err, "Email failed")
	}
	return "Email sent: " + result.Detail
}

func (s *Service) subject() string {
	return fmt.Sprintf("SIP WATCH Report: %s", s.now().In(s.location).Format(subjectLayout))
}

func (s *Service) sendResend(ctx context.Context, subject, htmlBody string) (*models.NotificationResult, error) {
	if s.config.ResendAPIKey == "" || s.config.RecipientEmail == "" {
		return nil, outcome.Missing(ResendAdvisory)
	}
	if err := s.checkRecipient(); err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.config.ResendAPIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(&resendEmail{
			From:    s.config.EmailFrom,
			To:      []string{s.config.RecipientEmail},
			Subject: subject,
			HTML:    htmlBody,
		}).
		Post(strings.TrimRight(s.config.ResendBaseURL, "/") + "/emails")

	if err != nil {
		return nil, outcome.Network(fmt.Errorf("failed to send email: %w", err))
	}

	if resp.IsError() {
		var apiErr resendError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Message != "" {
			return nil, outcome.Network(fmt.Errorf("resend returned status %d (%s): %s", resp.StatusCode(), apiErr.Name, apiErr.Message))
		}
		return nil, outcome.Network(fmt.Errorf("resend returned status %d: %s", resp.StatusCode(), string(resp.Body())))
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &sent); err != nil {
		return nil, outcome.Parse(fmt.Errorf("failed to decode resend response: %w", err))
	}

	return &models.NotificationResult{
		Delivered: true,
		Detail:    strings.TrimSpace(string(resp.Body())),
	}, nil
}

func (s *Service) sendSMTP(subject, htmlBody string) (*models.NotificationResult, error) {
	if s.config.SMTPHost == "" || s.config.RecipientEmail == "" {
		return nil, outcome.Missing(SMTPAdvisory)
	}
	if err := s.checkRecipient(); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.EmailFrom)
	m.SetHeader("To", s.config.RecipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return nil, outcome.Network(fmt.Errorf("failed to send email: %w", err))
	}

	return &models.NotificationResult{
		Delivered: true,
		Detail:    fmt.Sprintf("accepted by %s:%d for %s", s.config.SMTPHost, s.config.SMTPPort, s.config.RecipientEmail),
	}, nil
}

// checkRecipient rejects a malformed RECIPIENT_EMAIL before anything is sent
func (s *Service) checkRecipient() error {
	if err := validate.Var(s.config.RecipientEmail, "email"); err != nil {
		return outcome.Parse(fmt.Errorf("invalid RECIPIENT_EMAIL %q", s.config.RecipientEmail))
	}
	return nil
}

func buildEmailHTML(report string) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
