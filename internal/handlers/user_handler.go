package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/invoicehub/internal/auth"
	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/services"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler обрабатывает регистрацию, вход и профиль.
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register обрабатывает POST /api/user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	session, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRegistration):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrInvalidInviteCode):
			return echo.NewHTTPError(http.StatusForbidden, "invalid invite code")
		case errors.Is(err, storage.ErrLoginExists):
			return echo.NewHTTPError(http.StatusConflict, "login already exists")
		default:
			c.Logger().Errorf("failed to register user: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return issueSession(c, http.StatusCreated, session)
}

// Login обрабатывает POST /api/user/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	session, err := h.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCredentials):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
		default:
			c.Logger().Errorf("failed to login user: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return issueSession(c, http.StatusOK, session)
}

// Me обрабатывает GET /api/user/me.
func (h *UserHandler) Me(c echo.Context) error {
	p, err := auth.PrincipalFrom(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Profile(c.Request().Context(), p.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
		}
		c.Logger().Errorf("failed to load profile: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"data": user.ToResponse()})
}

// issueSession отдаёт токен в cookie, в заголовке и в теле ответа.
func issueSession(c echo.Context, status int, session *services.Session) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(session.TTL.Seconds()),
	})
	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+session.Token)

	return c.JSON(status, map[string]interface{}{
		"data": map[string]interface{}{
			"user":  session.User.ToResponse(),
			"token": session.Token,
		},
	})
}
