package service

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	HasSince(ctx context.Context, userID string, taskID int64, typ domain.Type, since time.Time) (bool, error)
}

type NotificationService struct {
	repo   Repository
	events domain.Publisher
}

func NewNotificationService(repo Repository, events domain.Publisher) *NotificationService {
	if events == nil {
		events = domain.Discard{}
	}
	return &NotificationService{repo: repo, events: events}
}

// Notify stores n and pushes it to the recipient's live connections.
func (s *NotificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.Type == "" {
		n.Type = domain.TypeInfo
	}
	if !n.Type.Valid() {
		return apperr.Validation("type", "invalid notification type %q", n.Type)
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.events.Publish(ctx, domain.NewEvent(domain.UserScope(n.UserID), domain.EventNotificationCreated, n))
	return nil
}

// HasSince reports whether userID already got a notification of typ about taskID since the given time.
func (s *NotificationService) HasSince(ctx context.Context, userID string, taskID int64, typ domain.Type, since time.Time) (bool, error) {
	return s.repo.HasSince(ctx, userID, taskID, typ, since)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
