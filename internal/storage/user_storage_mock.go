package storage

import (
	"context"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
)

// MockUserStorage - мок UserStorage. Без заданной функции поиск возвращает ErrUserNotFound.
type MockUserStorage struct {
	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByLoginFunc func(ctx context.Context, login string) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *MockUserStorage) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

// UsersByID строит GetByIDFunc поверх набора пользователей.
func UsersByID(users ...*models.User) func(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return func(ctx context.Context, id uuid.UUID) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, ErrUserNotFound
	}
}
