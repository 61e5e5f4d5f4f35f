package notify

import (
	"context"

	"github.com/partyup/partyup/internal/dependencies/clock"
	"github.com/partyup/partyup/internal/model"
	"github.com/partyup/partyup/internal/storage"
)

// Service manages per-user notification feeds. Feeds are consumed by
// polling: clients pass the greatest timestamp they have seen and get
// everything newer.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new notification service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Publish puts a notification on a user's feed, stamped with the current
// time. Publishing a name the user already has pending replaces the older
// notification.
func (s *Service) Publish(ctx context.Context, userID model.UserID, name string, payload map[string]any) error {
	return s.storage.AddNotification(ctx, &model.Notification{
		UserID:    userID,
		Name:      name,
		Payload:   payload,
		Timestamp: s.clock.NowUnix(),
	})
}

// Broadcast publishes the same notification to several users. Each user
// gets their own copy with its own timestamp.
func (s *Service) Broadcast(ctx context.Context, userIDs []model.UserID, name string, payload map[string]any) error {
	for _, userID := range userIDs {
		if err := s.Publish(ctx, userID, name, payload); err != nil {
			return err
		}
	}
	return nil
}

// Poll returns the user's notifications strictly newer than since, oldest
// first. A since of 0 returns everything pending.
func (s *Service) Poll(ctx context.Context, userID model.UserID, since float64) ([]*model.Notification, error) {
	return s.storage.NotificationsSince(ctx, userID, since)
}

// Consume returns and removes the user's pending notification with the
// given name, or nil if there is none.
func (s *Service) Consume(ctx context.Context, userID model.UserID, name string) (*model.Notification, error) {
	pending, err := s.storage.NotificationsSince(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	for _, n := range pending {
		if n.Name != name {
			continue
		}
		if err := s.storage.DeleteNotifications(ctx, userID, name); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, nil
}
