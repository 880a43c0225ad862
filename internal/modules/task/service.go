package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"cvstudio/internal/domain"
	"cvstudio/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Actor identifies who is performing an operation, as decoded from the
// request token.
type Actor struct {
	UserID int64
	Role   domain.UserRole
}

func (a Actor) isAdmin() bool { return a.Role == domain.RoleAdmin }

type Service struct {
	tasks  TaskRepository
	users  UserReader
	notifs NotificationSender
}

func NewService(tasks TaskRepository, users UserReader, notifs NotificationSender) *Service {
	return &Service{
		tasks:  tasks,
		users:  users,
		notifs: notifs,
	}
}

// CreateTask validates the order, derives the due date from the longest
// committed delivery time, and persists the task in status "new".
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest, actor Actor) (*domain.Task, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleModerator {
		return nil, ErrForbidden
	}

	if req.ClientName == "" || req.ClientPhone == "" {
		return nil, fmt.Errorf("%w: client name and phone are required", ErrValidation)
	}
	if len(req.Services) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	if req.DesignerID == 0 || req.ModeratorID == 0 {
		return nil, fmt.Errorf("%w: designer and moderator are required", ErrValidation)
	}
	if req.FinancialTotal < 0 || req.FinancialPaid < 0 {
		return nil, fmt.Errorf("%w: financial amounts must not be negative", ErrValidation)
	}
	if req.TaskDate.IsZero() {
		return nil, fmt.Errorf("%w: task date is required", ErrValidation)
	}

	designer, err := s.users.GetByID(ctx, req.DesignerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: designer does not exist", ErrValidation)
		}
		return nil, err
	}
	if designer.Role != domain.RoleDesigner {
		return nil, fmt.Errorf("%w: assigned designer must have the designer role", ErrValidation)
	}

	if _, err := s.users.GetByID(ctx, req.ModeratorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: moderator does not exist", ErrValidation)
		}
		return nil, err
	}

	hours, err := maxDeliveryHours(req.Services)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()

	t := &domain.Task{
		Code:               strconv.FormatInt(now.UnixMilli(), 10),
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		Services:           req.Services,
		DesignerID:         req.DesignerID,
		ModeratorID:        req.ModeratorID,
		Status:             domain.TaskNew,
		FinancialTotal:     req.FinancialTotal,
		FinancialPaid:      req.FinancialPaid,
		FinancialRemaining: req.FinancialTotal - req.FinancialPaid,
		Currency:           domain.CurrencyEGP,
		TaskDate:           req.TaskDate,
		DueDate:            req.TaskDate.Add(time.Duration(hours) * time.Hour),
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyTaskCreated(ctx, t.DesignerID, t.ModeratorID, t.ID, t.Code); err != nil {
			log.Printf("task created notification failed task_id=%d: %v", t.ID, err)
		}
	}

	return t, nil
}

func (s *Service) GetTask(ctx context.Context, taskID int64, actor Actor) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !s.canSee(actor, t) {
		return nil, ErrForbidden
	}
	return t, nil
}

// ListTasks scopes the result to the actor: designers and moderators see
// their assignments, admins and team leaders see everything.
func (s *Service) ListTasks(ctx context.Context, f repository.ListFilter, actor Actor) ([]domain.Task, error) {
	switch actor.Role {
	case domain.RoleDesigner:
		f.DesignerID = actor.UserID
	case domain.RoleModerator:
		f.ModeratorID = actor.UserID
	}
	return s.tasks.List(ctx, f)
}

// UpdateStatus applies a status change. Any known status may follow any
// other; completion is stamped exactly once.
func (s *Service) UpdateStatus(ctx context.Context, taskID int64, newStatus domain.TaskStatus, actor Actor) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !actor.isAdmin() && actor.UserID != t.DesignerID && actor.UserID != t.ModeratorID {
		return nil, ErrForbidden
	}

	if err := domain.ValidateTransition(t.Status, newStatus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now()
	fields := map[string]any{
		"status":     string(newStatus),
		"updated_at": now,
	}
	if newStatus == domain.TaskDone && t.CompletedAt == nil {
		fields["completed_at"] = now
	}

	if err := s.tasks.UpdateFields(ctx, taskID, fields); err != nil {
		return nil, err
	}

	t.Status = newStatus
	t.UpdatedAt = now
	if _, ok := fields["completed_at"]; ok {
		t.CompletedAt = &now
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyTaskStatusChanged(ctx, t.DesignerID, t.ModeratorID, t.ID, t.Code, newStatus); err != nil {
			log.Printf("status change notification failed task_id=%d: %v", t.ID, err)
		}
	}

	return t, nil
}

// UploadDelivery records the delivered file URLs and forces the task into
// "submitted". Only the assigned designer may deliver.
func (s *Service) UploadDelivery(ctx context.Context, taskID int64, urls []string, actor Actor) (*domain.Task, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: delivery must contain at least one file", ErrValidation)
	}

	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if actor.UserID != t.DesignerID {
		return nil, ErrForbidden
	}

	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fields := map[string]any{
		"delivery_urls": raw,
		"status":        string(domain.TaskSubmitted),
		"updated_at":    now,
	}

	if err := s.tasks.UpdateFields(ctx, taskID, fields); err != nil {
		return nil, err
	}

	t.DeliveryURLs = urls
	t.Status = domain.TaskSubmitted
	t.UpdatedAt = now

	if s.notifs != nil {
		if err := s.notifs.NotifyDeliveryUploaded(ctx, t.ModeratorID, t.ID, t.Code, len(urls)); err != nil {
			log.Printf("delivery notification failed task_id=%d: %v", t.ID, err)
		}
	}

	return t, nil
}

// UpdateFinancials rewrites the financial triple in one document update so
// remaining can never be observed out of sync with total and paid.
func (s *Service) UpdateFinancials(ctx context.Context, taskID int64, total, paid float64, actor Actor) (*domain.Task, error) {
	if !actor.isAdmin() {
		return nil, ErrForbidden
	}
	if total < 0 || paid < 0 {
		return nil, fmt.Errorf("%w: financial amounts must not be negative", ErrValidation)
	}

	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	remaining := total - paid

	fields := map[string]any{
		"financial_total":     total,
		"financial_paid":      paid,
		"financial_remaining": remaining,
		"updated_at":          now,
	}

	if err := s.tasks.UpdateFields(ctx, taskID, fields); err != nil {
		return nil, err
	}

	t.FinancialTotal = total
	t.FinancialPaid = paid
	t.FinancialRemaining = remaining
	t.UpdatedAt = now

	if s.notifs != nil {
		if err := s.notifs.NotifyPaymentUpdated(ctx, t.DesignerID, t.ModeratorID, t.ID, t.Code, total, paid); err != nil {
			log.Printf("payment notification failed task_id=%d: %v", t.ID, err)
		}
	}

	return t, nil
}

// DeleteTask removes a task permanently. Notifications and comments that
// reference it are left in place with a dangling task id.
func (s *Service) DeleteTask(ctx context.Context, taskID int64, actor Actor) error {
	if !actor.isAdmin() {
		return ErrForbidden
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Bulk applies one operation to a set of tasks as a single all-or-nothing
// batch. On failure no task in the set is touched.
func (s *Service) Bulk(ctx context.Context, req BulkRequest, actor Actor) error {
	if len(req.TaskIDs) == 0 {
		return fmt.Errorf("%w: task_ids must not be empty", ErrValidation)
	}

	now := time.Now()

	switch req.Action {
	case BulkActionStatus:
		if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleModerator {
			return ErrForbidden
		}
		if err := domain.ValidateTransition("", req.Status); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return s.tasks.BulkUpdateStatus(ctx, req.TaskIDs, req.Status, now)

	case BulkActionArchive:
		if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleModerator {
			return ErrForbidden
		}
		return s.tasks.BulkArchive(ctx, req.TaskIDs, now)

	case BulkActionDelete:
		if !actor.isAdmin() {
			return ErrForbidden
		}
		return s.tasks.BulkDelete(ctx, req.TaskIDs)

	default:
		return fmt.Errorf("%w: unknown bulk action %q", ErrValidation, req.Action)
	}
}

func (s *Service) canSee(actor Actor, t *domain.Task) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleTeamLeader:
		return true
	case domain.RoleDesigner:
		return actor.UserID == t.DesignerID
	case domain.RoleModerator:
		return actor.UserID == t.ModeratorID
	}
	return false
}
