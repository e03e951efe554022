package notification

import (
	"context"

	"go-formflow/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatcher is the write side consumed by the submission engine and the
// administrative services. One call creates exactly one unread record;
// duplicate suppression is deliberately not performed, so a step with
// several eligible approvers produces one record per approver.
type Dispatcher interface {
	Notify(ctx context.Context, recipientID primitive.ObjectID, kind Kind, title, message string, submissionID *primitive.ObjectID) error
}

type NotificationService interface {
	Dispatcher
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id string, actorID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, actorID primitive.ObjectID) error
}

type NotificationServiceImpl struct {
	Repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) NotificationService {
	return &NotificationServiceImpl{Repo: repo}
}

func (s *NotificationServiceImpl) Notify(ctx context.Context, recipientID primitive.ObjectID, kind Kind, title, message string, submissionID *primitive.ObjectID) error {
	notification := &Notification{
		UserID:       recipientID,
		Kind:         kind,
		Title:        title,
		Message:      message,
		SubmissionID: submissionID,
	}
	return s.Repo.Create(ctx, notification)
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.Repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Repo.GetUnreadCount(ctx, userID)
}

// MarkRead flips a record to read. Only the recipient may do so, and
// marking an already-read record reports success without mutation.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id string, actorID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NewValidation("invalid notification id")
	}

	notification, err := s.Repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if notification == nil {
		return apperrors.NewNotFound("notification", id)
	}
	if notification.UserID != actorID {
		return apperrors.NewForbidden("notification belongs to another user")
	}
	if notification.IsRead {
		return nil
	}

	return s.Repo.MarkAsRead(ctx, oid)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, actorID primitive.ObjectID) error {
	return s.Repo.MarkAllAsRead(ctx, actorID)
}
