package notifications

import (
	"context"

	"github.com/sipwatch/sipwatch-bot/internal/models"
)

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	Send(ctx context.Context, report string) (*models.NotificationResult, error)
}
