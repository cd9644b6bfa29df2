package modules

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/peoplehub/services/automation/internal/messaging"
	"example.com/peoplehub/services/automation/internal/models"
)

// NotificationService is the notification channel's write API. Each
// notification is stored, and pushed onto the delivery queue when a bus
// client is wired; rendering and delivery belong to the notification
// service, not this engine.
type NotificationService struct {
	db  *gorm.DB
	bus messaging.ServiceBusClient
}

// NewNotificationService creates a new notification service. The bus
// client may be nil when running without Service Bus.
func NewNotificationService(db *gorm.DB, bus messaging.ServiceBusClient) *NotificationService {
	return &NotificationService{db: db, bus: bus}
}

// notificationMessage is the queue payload for the delivery worker
type notificationMessage struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Audience  string `json:"audience"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Send records and dispatches one notification
func (s *NotificationService) Send(ctx context.Context, recipient uuid.UUID, audience, title, body string) error {
	notification := models.Notification{
		ID:        uuid.New(),
		Recipient: recipient,
		Audience:  audience,
		Title:     title,
		Body:      body,
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return errors.Wrap(err, "failed to store notification")
	}

	if s.bus != nil {
		msg := notificationMessage{
			ID:        notification.ID.String(),
			Recipient: recipient.String(),
			Audience:  audience,
			Title:     title,
			Body:      body,
		}
		if err := s.bus.SendMessage(ctx, msg); err != nil {
			// The stored row is the source of truth; delivery is best effort
			log.Warn().Err(err).Str("notification_id", msg.ID).Msg("Failed to enqueue notification for delivery")
		}
	}

	log.Info().
		Str("audience", audience).
		Str("title", title).
		Msg("Notification dispatched")
	return nil
}
