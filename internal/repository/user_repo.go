package repository

import (
	"context"
	"time"

	"cvstudio/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	Name      string  `gorm:"column:name"`
	Email     string  `gorm:"column:email;uniqueIndex"`
	Phone     *string `gorm:"column:phone"`
	Role      string  `gorm:"column:role;index"`
	PushToken *string `gorm:"column:push_token"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone, token string
	if m.Phone != nil {
		phone = *m.Phone
	}
	if m.PushToken != nil {
		token = *m.PushToken
	}

	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     phone,
		Role:      domain.UserRole(m.Role),
		PushToken: token,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var phone, token *string
	if u.Phone != "" {
		v := u.Phone
		phone = &v
	}
	if u.PushToken != "" {
		v := u.PushToken
		token = &v
	}

	return userModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     phone,
		Role:      string(u.Role),
		PushToken: token,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) List(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Model(&userModel{}).Order("name")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}

	var rows []userModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}

func (r *UserRepository) UpdatePushToken(ctx context.Context, id int64, token string) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Update("push_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
