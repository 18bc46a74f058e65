package auth

import (
	"testing"
	"time"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_IssueParse(t *testing.T) {
	tokens := NewTokenManager("k1", time.Hour)
	user := &models.User{ID: uuid.New(), Login: "acc", Role: models.RoleStaff}

	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "acc", claims.Login)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenManager_IssueRejectsUnknownRole(t *testing.T) {
	_, err := NewTokenManager("k1", time.Hour).Issue(&models.User{ID: uuid.New(), Role: "admin"})
	assert.Error(t, err)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, defaultTTL, NewTokenManager("k1", 0).TTL())
	assert.Equal(t, time.Minute, NewTokenManager("k1", time.Minute).TTL())
}

func TestTokenManager_Parse(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	user := &models.User{ID: uuid.New(), Login: "p1", Role: models.RoleProvider}

	issuer := NewTokenManager("k1", time.Hour)
	issuer.now = fixedClock(issuedAt)
	valid, err := issuer.Issue(user)
	require.NoError(t, err)

	forged := func(method jwt.SigningMethod, key interface{}, claims Claims) string {
		raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return raw
	}
	registered := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		now     time.Time
		wantErr error
	}{
		{"valid", valid, "k1", issuedAt.Add(30 * time.Minute), nil},
		{"expired", valid, "k1", issuedAt.Add(2 * time.Hour), ErrTokenExpired},
		{"other secret", valid, "k2", issuedAt, ErrInvalidToken},
		{"garbage", "a.b.c", "k1", issuedAt, ErrInvalidToken},
		{
			name:    "alg none",
			token:   forged(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{UserID: user.ID, Role: models.RoleStaff, RegisteredClaims: registered}),
			secret:  "k1",
			now:     issuedAt,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "foreign issuer",
			token:   forged(jwt.SigningMethodHS256, []byte("k1"), Claims{UserID: user.ID, Role: models.RoleStaff, RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere"}}),
			secret:  "k1",
			now:     issuedAt,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unknown role",
			token:   forged(jwt.SigningMethodHS256, []byte("k1"), Claims{UserID: user.ID, Role: "admin", RegisteredClaims: registered}),
			secret:  "k1",
			now:     issuedAt,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "no user id",
			token:   forged(jwt.SigningMethodHS256, []byte("k1"), Claims{Role: models.RoleStaff, RegisteredClaims: registered}),
			secret:  "k1",
			now:     issuedAt,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTokenManager(tt.secret, time.Hour)
			m.now = fixedClock(tt.now)

			claims, err := m.Parse(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.RoleProvider, claims.Role)
		})
	}
}
