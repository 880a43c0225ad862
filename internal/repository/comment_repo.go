package repository

import (
	"context"
	"time"

	"cvstudio/internal/domain"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

type commentModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	TaskID     int64     `gorm:"column:task_id;index"`
	AuthorID   int64     `gorm:"column:author_id"`
	AuthorName *string   `gorm:"column:author_name"`
	Text       string    `gorm:"column:text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (commentModel) TableName() string { return "task_comments" }

func (r *CommentRepository) Create(ctx context.Context, c *domain.TaskComment) error {
	var name *string
	if c.AuthorName != "" {
		v := c.AuthorName
		name = &v
	}

	m := commentModel{
		TaskID:     c.TaskID,
		AuthorID:   c.AuthorID,
		AuthorName: name,
		Text:       c.Text,
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}

	c.ID = m.ID
	c.CreatedAt = m.CreatedAt
	return nil
}

func (r *CommentRepository) GetByTaskID(ctx context.Context, taskID int64) ([]domain.TaskComment, error) {
	var rows []commentModel
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.TaskComment, 0, len(rows))
	for _, m := range rows {
		var name string
		if m.AuthorName != nil {
			name = *m.AuthorName
		}
		out = append(out, domain.TaskComment{
			ID:         m.ID,
			TaskID:     m.TaskID,
			AuthorID:   m.AuthorID,
			AuthorName: name,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id, authorID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&commentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
