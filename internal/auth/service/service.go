package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"assettrack/internal/audit"
	"assettrack/internal/auth/models"
	"assettrack/internal/platform/metrics"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/platform/sentinel"
	"assettrack/pkg/requestcontext"
)

// UserStore is the user persistence contract.
type UserStore interface {
	Save(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore is the session persistence contract.
type SessionStore interface {
	Save(ctx context.Context, sess *models.Session) error
	FindByID(ctx context.Context, id string, now time.Time) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuditPublisher records domain actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Claims are the JWT claims carried in session tokens.
type Claims struct {
	jwt.RegisteredClaims
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"sid"`
}

// Service handles login, token issuance, and token validation. The token is
// a session handle, not a security primitive: authorization is the static
// role-to-capability lookup in models.
type Service struct {
	users      UserStore
	sessions   SessionStore
	signingKey []byte
	sessionTTL time.Duration
	logger     *slog.Logger
	auditor    AuditPublisher
	metrics    *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(users UserStore, sessions SessionStore, signingKey string, sessionTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		signingKey: []byte(signingKey),
		sessionTTL: sessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult bundles the issued token with the authenticated user.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login verifies credentials, opens a session, and issues a signed token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLogin("failure")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.recordLogin("failure")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Device:    describeDevice(userAgent),
		ClientIP:  clientIP,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.issueToken(user, sess, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}

	if s.auditor != nil {
		_ = s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionUserLoggedIn,
			Actor:    user.Name,
			EntityID: user.ID,
			Detail:   sess.Device,
		})
	}
	s.recordLogin("success")

	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// Logout deletes the session behind a token so it can no longer be renewed.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	return nil
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// ValidateToken parses and verifies a session token, checking that the
// session behind it still exists.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}

	if _, err := s.sessions.FindByID(ctx, claims.SessionID, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}
	return claims, nil
}

// SeedUser registers a user with the given password, hashing it with bcrypt.
// Used by main to provision the initial accounts.
func (s *Service) SeedUser(ctx context.Context, email, name string, role models.Role, department, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(email),
		Name:         name,
		Role:         role,
		Department:   department,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return user, nil
}

func (s *Service) issueToken(user *models.User, sess *models.Session, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		Name:      user.Name,
		Role:      user.Role,
		SessionID: sess.ID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

// describeDevice condenses a User-Agent header into a short label for the
// session record.
func describeDevice(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	label := browser
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " on " + os
	}
	if label == "" {
		return "unknown"
	}
	return label
}
