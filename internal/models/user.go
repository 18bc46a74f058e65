package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole определяет набор доступных пользователю операций.
type UserRole string

const (
	// RoleStaff - сотрудник бухгалтерии: массовый импорт, документы, рассылки.
	RoleStaff UserRole = "staff"
	// RoleProvider - поставщик, от имени которого оформляются заявки.
	RoleProvider UserRole = "provider"
)

// Valid сообщает, известна ли роль.
func (r UserRole) Valid() bool {
	return r == RoleStaff || r == RoleProvider
}

// User - учётная запись сотрудника или поставщика.
type User struct {
	ID           uuid.UUID `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Email        string    `db:"email"` // пусто, если адрес не указан
	Role         UserRole  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// RegisterRequest - тело POST /api/user/register.
// InviteCode совпадающий с настроенным кодом даёт роль staff.
type RegisterRequest struct {
	Login      string `json:"login" validate:"required,min=3,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Email      string `json:"email" validate:"omitempty,email"`
	InviteCode string `json:"inviteCode"`
}

// LoginRequest - тело POST /api/user/login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserResponse - DTO пользователя без пароля.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt string    `json:"createdAt"`
}

// ToResponse преобразует пользователя в DTO.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
