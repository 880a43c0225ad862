package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cvstudio/internal/domain"
)

const defaultDispatchTimeout = 5 * time.Second

// Service persists notification records. Actual delivery (push, email) is a
// downstream collaborator reading the stored records; the dispatcher's only
// job is to get the record written and, when a live feed is attached, pushed
// to connected clients.
type Service struct {
	repo    Repository
	hub     *Hub
	timeout time.Duration
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, timeout: defaultDispatchTimeout}
}

// WithHub attaches the live websocket feed.
func (s *Service) WithHub(hub *Hub) *Service {
	s.hub = hub
	return s
}

// WithTimeout bounds the store write per dispatch.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *Service) Create(ctx context.Context, userID int64, t domain.NotificationType, title, message, body, link string, taskID *int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n := &domain.Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		Body:    body,
		Link:    link,
		TaskID:  taskID,
		IsRead:  false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendToUser(userID, n)
	}
	return nil
}

// fanOut creates one record per recipient. The recipient list is
// de-duplicated and zero ids are skipped: a task missing its designer or
// moderator must not fail the whole dispatch.
func (s *Service) fanOut(ctx context.Context, recipients []int64, t domain.NotificationType, title, message, body, link string, taskID *int64) error {
	seen := make(map[int64]bool, len(recipients))
	var errs []error
	for _, id := range recipients {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		if err := s.Create(ctx, id, t, title, message, body, link, taskID); err != nil {
			errs = append(errs, fmt.Errorf("recipient %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) NotifyTaskCreated(ctx context.Context, designerID, moderatorID, taskID int64, code string) error {
	return s.fanOut(ctx,
		[]int64{designerID, moderatorID},
		domain.NotificationTask,
		"New task assigned",
		fmt.Sprintf("Order %s has been created and assigned to you", code),
		"",
		taskLink(taskID),
		&taskID,
	)
}

func (s *Service) NotifyTaskStatusChanged(ctx context.Context, designerID, moderatorID, taskID int64, code string, status domain.TaskStatus) error {
	return s.fanOut(ctx,
		[]int64{designerID, moderatorID},
		domain.NotificationTask,
		"Task status updated",
		fmt.Sprintf("Order %s moved to %s", code, status),
		"",
		taskLink(taskID),
		&taskID,
	)
}

func (s *Service) NotifyDeliveryUploaded(ctx context.Context, moderatorID, taskID int64, code string, fileCount int) error {
	return s.fanOut(ctx,
		[]int64{moderatorID},
		domain.NotificationTask,
		"Delivery uploaded",
		fmt.Sprintf("The designer uploaded %d file(s) for order %s", fileCount, code),
		"",
		taskLink(taskID),
		&taskID,
	)
}

func (s *Service) NotifyPaymentUpdated(ctx context.Context, designerID, moderatorID, taskID int64, code string, total, paid float64) error {
	return s.fanOut(ctx,
		[]int64{designerID, moderatorID},
		domain.NotificationPayment,
		"Payment updated",
		fmt.Sprintf("Order %s payment updated: %.2f of %.2f EGP paid", code, paid, total),
		"",
		taskLink(taskID),
		&taskID,
	)
}

func (s *Service) NotifyTaskOverdue(ctx context.Context, designerID, moderatorID, taskID int64, code string, due time.Time) error {
	return s.fanOut(ctx,
		[]int64{designerID, moderatorID},
		domain.NotificationTask,
		"Task overdue",
		fmt.Sprintf("Order %s passed its due date (%s) without completion", code, due.Format("2006-01-02 15:04")),
		"",
		taskLink(taskID),
		&taskID,
	)
}

// NotifyWelcome greets a freshly created user account.
func (s *Service) NotifyWelcome(ctx context.Context, userID int64, name string) error {
	return s.Create(ctx, userID,
		domain.NotificationSystem,
		"Welcome",
		fmt.Sprintf("Welcome aboard, %s", name),
		"", "", nil,
	)
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, notificationID, userID int64) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

func taskLink(taskID int64) string {
	return fmt.Sprintf("/tasks/%d", taskID)
}
