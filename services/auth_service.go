package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"prediction-pool/models"
	"prediction-pool/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost        = 10
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// AuthResult is a signed-in user and their session token.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AuthService struct {
	DB        *gorm.DB
	Clock     clockwork.Clock
	Secret    []byte
	ExpiresIn time.Duration
}

func NewAuthService(db *gorm.DB, clock clockwork.Clock, secret string, expiresIn time.Duration) *AuthService {
	if expiresIn <= 0 {
		expiresIn = 7 * 24 * time.Hour
	}
	return &AuthService{DB: db, Clock: clock, Secret: []byte(secret), ExpiresIn: expiresIn}
}

// Register creates a regular player account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.createUser(ctx, username, password, false)
	if err != nil {
		return nil, err
	}
	utils.WithUser(user.ID, "").Infof("👤 Registered %s", user.Username)
	return s.issue(user)
}

// CreateAdmin creates an administrator account. Callers must already hold the admin key.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.createUser(ctx, username, password, true)
	if err != nil {
		return nil, err
	}
	utils.WithUser(user.ID, "").Infof("🛡️ Admin account created: %s", user.Username)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, ValidationError("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if len(password) < minPasswordLength {
		return nil, ValidationError("password must be at least %d characters", minPasswordLength)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash), IsAdmin: admin}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		utils.WithUser(user.ID, "").Warn("🚫 Failed login attempt")
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	now := s.Clock.Now()
	expiresAt := now.Add(s.ExpiresIn)

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken validates a session token and returns the caller it identifies.
func (s *AuthService) ParseToken(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}

// CurrentUser reloads the account behind an identity.
func (s *AuthService) CurrentUser(ctx context.Context, identity *Identity) (*models.User, error) {
	if err := requireUser(identity); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user %s: %w", identity.UserID, err)
	}
	return &user, nil
}
