package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/invoicehub/internal/auth"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmptyCredentials    = errors.New("login and password are required")
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrInvalidInviteCode   = errors.New("invalid invite code")
)

// Session - пользователь и выпущенный для него токен.
type Session struct {
	User  *models.User
	Token string
	TTL   time.Duration
}

// UserService управляет учётными записями и сессиями.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*Session, error)
	Login(ctx context.Context, login, password string) (*Session, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// UserServiceImpl реализует UserService.
type UserServiceImpl struct {
	userStorage     storage.UserStorage
	tokens          *auth.TokenManager
	staffInviteCode string
	validate        *validator.Validate
	logger          *zap.Logger
}

// NewUserService создаёт сервис пользователей. При пустом staffInviteCode
// регистрация сотрудников закрыта.
func NewUserService(userStorage storage.UserStorage, tokens *auth.TokenManager, staffInviteCode string, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		userStorage:     userStorage,
		tokens:          tokens,
		staffInviteCode: staffInviteCode,
		validate:        newValidator(),
		logger:          logger,
	}
}

// Register создаёт учётную запись. Без кода приглашения пользователь
// становится поставщиком, с верным кодом - сотрудником.
func (s *UserServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*Session, error) {
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRegistration, describeValidation(err))
	}

	role, err := s.roleFor(req.InviteCode)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
		}
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Login:        req.Login,
		PasswordHash: hash,
		Email:        req.Email,
		Role:         role,
	}
	if err := s.userStorage.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrLoginExists) {
			return nil, storage.ErrLoginExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return s.session(user)
}

// Login проверяет пароль и выпускает новый токен.
func (s *UserServiceImpl) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	user, err := s.userStorage.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// Profile возвращает учётную запись текущего пользователя.
func (s *UserServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userStorage.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) roleFor(inviteCode string) (models.UserRole, error) {
	if inviteCode == "" {
		return models.RoleProvider, nil
	}
	if s.staffInviteCode == "" || subtle.ConstantTimeCompare([]byte(inviteCode), []byte(s.staffInviteCode)) != 1 {
		return "", ErrInvalidInviteCode
	}
	return models.RoleStaff, nil
}

func (s *UserServiceImpl) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token, TTL: s.tokens.TTL()}, nil
}
