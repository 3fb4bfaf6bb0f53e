package app

import (
	"context"
	"time"

	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/realtime"
	"github.com/google/uuid"
)

// NotificationService pushes per-user notifications through the user room.
// Durable notification storage and email are other services' concerns.
type NotificationService struct {
	pub   *realtime.Publisher
	now   func() time.Time
	newID func() string
}

func NewNotificationService(pub *realtime.Publisher) *NotificationService {
	return &NotificationService{pub: pub, now: time.Now, newID: uuid.NewString}
}

func (s *NotificationService) Send(_ context.Context, userID, title, body, link string) domain.Notification {
	n := domain.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: s.now(),
	}
	s.pub.NotifyUser(n)
	return n
}
