package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	repo "github.com/oksasatya/go-event-finder/internal/domain/repository"
	"github.com/oksasatya/go-event-finder/pkg/helpers"
	"github.com/oksasatya/go-event-finder/pkg/validation"
)

type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{Repo: users, JWT: jwt, Redis: rdb, Logger: logger}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,pwd"`
	Location string `json:"location" validate:"max=255"`
}

// Session is an authenticated user with the access token issued for them.
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a user and logs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	if err := invalidFields(validation.Struct(in)); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password -> %w", err)
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash, Location: in.Location}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		helpers.LogError(s.Logger, "create user failed", err, logrus.Fields{"email": in.Email})
		return nil, fmt.Errorf("create user -> %w", err)
	}
	return s.issue(ctx, u)
}

// Login checks the credentials and opens a new session, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user -> %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// issue generates an access token and records its session id in Redis.
func (s *AuthService) issue(ctx context.Context, u *entity.User) (*Session, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}

	if s.Redis != nil {
		key := helpers.KeyUserSession(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.ExpireAt(ctx, key, exp)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.Logger.WithError(rErr).WithField("key", key).Error("redis pipeline failed")
			return nil, fmt.Errorf("store session -> %w", rErr)
		}
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// Authenticate resolves an access token to a user id. With Redis configured
// the token's session must still be the user's current one.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		sid, rErr := s.Redis.HGet(ctx, helpers.KeyUserSession(claims.UserID), "sid").Result()
		if rErr != nil || sid != claims.SessionID {
			return "", ErrSessionExpired
		}
	}
	return claims.UserID, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user -> %w", err)
	}
	return u, nil
}

// Logout ends the user's current session.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, helpers.KeyUserSession(userID))
}
