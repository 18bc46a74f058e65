package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	principalKey = "principal"
	// CookieName - cookie с токеном сессии, альтернатива заголовку Authorization.
	CookieName = "Authorization"
)

// Principal - аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID uuid.UUID
	Login  string
	Role   models.UserRole
}

// Is сообщает, входит ли роль пользователя в перечисленные.
func (p *Principal) Is(roles ...models.UserRole) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Authenticate пропускает только запросы с валидным токеном.
func Authenticate(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetPrincipal(c, principalFromClaims(claims))
			return next(c)
		}
	}
}

// OptionalAuthenticate пропускает запросы без токена как гостевые.
// Невалидный токен равносилен его отсутствию.
func OptionalAuthenticate(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := bearerToken(c); raw != "" {
				if claims, err := tokens.Parse(raw); err == nil {
					SetPrincipal(c, principalFromClaims(claims))
				}
			}
			return next(c)
		}
	}
}

// RequireRole ставится после Authenticate и отвечает 403 остальным ролям.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := PrincipalFrom(c)
			if err != nil {
				return err
			}
			if !p.Is(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// SetPrincipal кладёт пользователя в контекст запроса.
func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom возвращает пользователя запроса или 401.
func PrincipalFrom(c echo.Context) (*Principal, error) {
	p, ok := c.Get(principalKey).(*Principal)
	if !ok || p == nil || p.UserID == uuid.Nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return p, nil
}

// OptionalPrincipal возвращает пользователя запроса или nil для гостя.
func OptionalPrincipal(c echo.Context) *Principal {
	p, err := PrincipalFrom(c)
	if err != nil {
		return nil
	}
	return p
}

func principalFromClaims(claims *Claims) *Principal {
	return &Principal{UserID: claims.UserID, Login: claims.Login, Role: claims.Role}
}

// bearerToken берёт токен из "Authorization: Bearer ..." или из cookie.
func bearerToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := c.Cookie(CookieName); err == nil {
		return strings.TrimPrefix(cookie.Value, "Bearer ")
	}
	return ""
}
