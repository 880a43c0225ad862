package comment

import (
	"context"
	"errors"

	"cvstudio/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("comment not found")
)

type Repository interface {
	Create(ctx context.Context, c *domain.TaskComment) error
	GetByTaskID(ctx context.Context, taskID int64) ([]domain.TaskComment, error)
	Delete(ctx context.Context, id, authorID int64) error
}

type Service struct {
	comments Repository
}

func NewService(comments Repository) *Service {
	return &Service{comments: comments}
}

func (s *Service) AddComment(ctx context.Context, taskID, authorID int64, authorName, text string) (*domain.TaskComment, error) {
	if text == "" {
		return nil, ErrValidation
	}

	c := &domain.TaskComment{
		TaskID:     taskID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Text:       text,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, taskID int64) ([]domain.TaskComment, error) {
	return s.comments.GetByTaskID(ctx, taskID)
}

func (s *Service) DeleteComment(ctx context.Context, id, authorID int64) error {
	if err := s.comments.Delete(ctx, id, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
