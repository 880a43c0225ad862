package repository

import (
	"context"
	"encoding/json"
	"time"

	"cvstudio/internal/domain"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type taskModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Code string `gorm:"column:code;uniqueIndex"`

	ClientName  string `gorm:"column:client_name"`
	ClientPhone string `gorm:"column:client_phone"`

	Services []byte `gorm:"column:services"`

	DesignerID  int64 `gorm:"column:designer_id;index"`
	ModeratorID int64 `gorm:"column:moderator_id;index"`

	Status string `gorm:"column:status;index"`

	FinancialTotal     float64 `gorm:"column:financial_total"`
	FinancialPaid      float64 `gorm:"column:financial_paid"`
	FinancialRemaining float64 `gorm:"column:financial_remaining"`
	Currency           string  `gorm:"column:currency"`

	DeliveryURLs []byte `gorm:"column:delivery_urls"`

	TaskDate time.Time `gorm:"column:task_date"`
	DueDate  time.Time `gorm:"column:due_date;index"`

	Archived   bool       `gorm:"column:archived"`
	ArchivedAt *time.Time `gorm:"column:archived_at"`

	OverdueNotified   bool       `gorm:"column:overdue_notified"`
	OverdueNotifiedAt *time.Time `gorm:"column:overdue_notified_at"`

	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (taskModel) TableName() string { return "tasks" }

func toDomainTask(m taskModel) (*domain.Task, error) {
	var services []domain.ServiceItem
	if len(m.Services) > 0 {
		if err := json.Unmarshal(m.Services, &services); err != nil {
			return nil, err
		}
	}

	var urls []string
	if len(m.DeliveryURLs) > 0 {
		if err := json.Unmarshal(m.DeliveryURLs, &urls); err != nil {
			return nil, err
		}
	}

	return &domain.Task{
		ID:                 m.ID,
		Code:               m.Code,
		ClientName:         m.ClientName,
		ClientPhone:        m.ClientPhone,
		Services:           services,
		DesignerID:         m.DesignerID,
		ModeratorID:        m.ModeratorID,
		Status:             domain.TaskStatus(m.Status),
		FinancialTotal:     m.FinancialTotal,
		FinancialPaid:      m.FinancialPaid,
		FinancialRemaining: m.FinancialRemaining,
		Currency:           m.Currency,
		DeliveryURLs:       urls,
		TaskDate:           m.TaskDate,
		DueDate:            m.DueDate,
		Archived:           m.Archived,
		ArchivedAt:         m.ArchivedAt,
		OverdueNotified:    m.OverdueNotified,
		OverdueNotifiedAt:  m.OverdueNotifiedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		CompletedAt:        m.CompletedAt,
	}, nil
}

func toTaskModel(t *domain.Task) (taskModel, error) {
	services, err := json.Marshal(t.Services)
	if err != nil {
		return taskModel{}, err
	}

	var urls []byte
	if len(t.DeliveryURLs) > 0 {
		urls, err = json.Marshal(t.DeliveryURLs)
		if err != nil {
			return taskModel{}, err
		}
	}

	return taskModel{
		ID:                 t.ID,
		Code:               t.Code,
		ClientName:         t.ClientName,
		ClientPhone:        t.ClientPhone,
		Services:           services,
		DesignerID:         t.DesignerID,
		ModeratorID:        t.ModeratorID,
		Status:             string(t.Status),
		FinancialTotal:     t.FinancialTotal,
		FinancialPaid:      t.FinancialPaid,
		FinancialRemaining: t.FinancialRemaining,
		Currency:           t.Currency,
		DeliveryURLs:       urls,
		TaskDate:           t.TaskDate,
		DueDate:            t.DueDate,
		Archived:           t.Archived,
		ArchivedAt:         t.ArchivedAt,
		OverdueNotified:    t.OverdueNotified,
		OverdueNotifiedAt:  t.OverdueNotifiedAt,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		CompletedAt:        t.CompletedAt,
	}, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	m, err := toTaskModel(t)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	out, err := toDomainTask(m)
	if err != nil {
		return err
	}
	*t = *out
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var m taskModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainTask(m)
}

// ListFilter narrows List. Zero values mean "no filter". Archived tasks are
// excluded unless IncludeArchived is set.
type ListFilter struct {
	Status          domain.TaskStatus
	DesignerID      int64
	ModeratorID     int64
	IncludeArchived bool
	Limit           int
	Offset          int
}

func (r *TaskRepository) List(ctx context.Context, f ListFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&taskModel{}).Order("created_at DESC")

	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.DesignerID != 0 {
		q = q.Where("designer_id = ?", f.DesignerID)
	}
	if f.ModeratorID != 0 {
		q = q.Where("moderator_id = ?", f.ModeratorID)
	}
	if !f.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []taskModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Task, 0, len(rows))
	for _, m := range rows {
		t, err := toDomainTask(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// UpdateFields writes a partial-field update so a live-subscription layer
// sees only the columns that actually changed.
func (r *TaskRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindDueBetween returns non-terminal tasks whose due date lies strictly
// inside (from, to).
func (r *TaskRepository) FindDueBetween(ctx context.Context, from, to time.Time, statuses []domain.TaskStatus) ([]domain.Task, error) {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}

	var rows []taskModel
	err := r.db.WithContext(ctx).
		Where("due_date > ? AND due_date < ?", from, to).
		Where("status IN ?", ss).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Task, 0, len(rows))
	for _, m := range rows {
		t, err := toDomainTask(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *TaskRepository) MarkOverdueNotified(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&taskModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"overdue_notified":    true,
			"overdue_notified_at": at,
		}).Error
}

// ListCompletedByModerator returns done tasks completed inside [from, to).
func (r *TaskRepository) ListCompletedByModerator(ctx context.Context, moderatorID int64, from, to time.Time) ([]domain.Task, error) {
	var rows []taskModel
	err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		Where("status = ?", string(domain.TaskDone)).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Task, 0, len(rows))
	for _, m := range rows {
		t, err := toDomainTask(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// BulkUpdateStatus moves every task in ids to status inside one transaction.
// Tasks entering done without a completion timestamp get one stamped.
func (r *TaskRepository) BulkUpdateStatus(ctx context.Context, ids []int64, status domain.TaskStatus, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&taskModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     string(status),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		if status == domain.TaskDone {
			if err := tx.Model(&taskModel{}).
				Where("id IN ? AND completed_at IS NULL", ids).
				Update("completed_at", now).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TaskRepository) BulkArchive(ctx context.Context, ids []int64, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&taskModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"archived":    true,
				"archived_at": now,
				"updated_at":  now,
			}).Error
	})
}

func (r *TaskRepository) BulkDelete(ctx context.Context, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&taskModel{}).Error
	})
}
