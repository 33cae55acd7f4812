package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthService, func(time.Duration)) {
	t.Helper()
	clock := newTestClock()
	return NewAuthService(newTestDB(t), clock, "test-secret", time.Hour), clock.Advance
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth(t)

	reg, err := svc.Register(context.Background(), "  amina ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "amina", reg.User.Username)
	assert.False(t, reg.User.IsAdmin)
	assert.NotEqual(t, "hunter22", reg.User.PasswordHash)
	assert.Equal(t, testNow.Add(time.Hour), reg.ExpiresAt)

	login, err := svc.Login(context.Background(), "amina", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	id, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: reg.User.ID, Username: "amina"}, id)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuth(t)

	tests := []struct {
		name     string
		username string
		password string
		want     ReasonCode
	}{
		{"short username", "ab", "secret1", ReasonValidation},
		{"long username", strings.Repeat("x", 51), "secret1", ReasonValidation},
		{"short password", "amina", "12345", ReasonValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			var pe *PoolError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.want, pe.Code)
		})
	}

	_, err := svc.Register(context.Background(), strings.Repeat("x", 50), "secret1")
	assert.NoError(t, err)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Register(context.Background(), "amina", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "amina", "another1")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.CreateAdmin(context.Background(), "amina", "another1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuth(t)
	_, err := svc.Register(context.Background(), "amina", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "amina", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateAdmin_TokenCarriesAdminFlag(t *testing.T) {
	svc, _ := newTestAuth(t)

	admin, err := svc.CreateAdmin(context.Background(), "referee", "whistle")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	login, err := svc.Login(context.Background(), "referee", "whistle")
	require.NoError(t, err)

	id, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)

	user, err := svc.CurrentUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "referee", user.Username)
}

func TestParseToken_Rejections(t *testing.T) {
	svc, advance := newTestAuth(t)
	reg, err := svc.Register(context.Background(), "amina", "secret1")
	require.NoError(t, err)

	_, err = svc.ParseToken("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: reg.User.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	advance(2 * time.Hour)
	_, err = svc.ParseToken(reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
