package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assettrack/internal/auth/models"
	sessionStore "assettrack/internal/auth/store/session"
	userStore "assettrack/internal/auth/store/user"
	dErrors "assettrack/pkg/domain-errors"
	"assettrack/pkg/requestcontext"
)

const testUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type AuthServiceSuite struct {
	suite.Suite
	service  *Service
	sessions *sessionStore.InMemory
	ctx      context.Context
	now      time.Time
}

func (s *AuthServiceSuite) SetupTest() {
	s.sessions = sessionStore.NewInMemory()
	s.service = New(userStore.New(), s.sessions, "test-signing-key", time.Hour)
	// Token expiry is checked against the wall clock by the JWT library, so
	// the pinned request clock has to track real time here.
	s.now = time.Now().UTC().Truncate(time.Second)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	_, err := s.service.SeedUser(s.ctx, "dana@example.com", "Dana", models.RoleManager, "Operations", "correct horse")
	s.Require().NoError(err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) login(email, password string) (*LoginResult, error) {
	return s.service.Login(s.ctx, &models.LoginRequest{Email: email, Password: password}, "203.0.113.7", testUA)
}

func (s *AuthServiceSuite) TestLogin() {
	s.Run("valid credentials yield a token and the user", func() {
		result, err := s.login("dana@example.com", "correct horse")
		s.Require().NoError(err)
		s.NotEmpty(result.Token)
		s.Equal("Dana", result.User.Name)
		s.True(result.ExpiresAt.Equal(s.now.Add(time.Hour)))
	})

	s.Run("email lookup is case-insensitive", func() {
		_, err := s.login("DANA@Example.COM", "correct horse")
		s.Require().NoError(err)
	})

	s.Run("wrong password and unknown email are indistinguishable", func() {
		_, wrongPass := s.login("dana@example.com", "nope")
		_, unknown := s.login("ghost@example.com", "nope")
		s.Require().Error(wrongPass)
		s.Require().Error(unknown)
		s.True(dErrors.Is(wrongPass, dErrors.CodeUnauthorized))
		s.True(dErrors.Is(unknown, dErrors.CodeUnauthorized))
		s.Equal(dErrors.MessageOf(wrongPass), dErrors.MessageOf(unknown))
	})

	s.Run("empty credentials fail validation", func() {
		_, err := s.login("", "")
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *AuthServiceSuite) TestValidateToken() {
	result, err := s.login("dana@example.com", "correct horse")
	s.Require().NoError(err)

	s.Run("accepts a freshly issued token", func() {
		claims, err := s.service.ValidateToken(s.ctx, result.Token)
		s.Require().NoError(err)
		s.Equal(result.User.ID, claims.Subject)
		s.Equal("Dana", claims.Name)
		s.Equal(models.RoleManager, claims.Role)
	})

	s.Run("rejects a garbage token", func() {
		_, err := s.service.ValidateToken(s.ctx, "not.a.token")
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects a token signed with a different key", func() {
		other := New(userStore.New(), sessionStore.NewInMemory(), "other-key", time.Hour)
		_, err := other.ValidateToken(s.ctx, result.Token)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects once the session has expired", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Hour))
		_, err := s.service.ValidateToken(later, result.Token)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthServiceSuite) TestLogout() {
	result, err := s.login("dana@example.com", "correct horse")
	s.Require().NoError(err)

	claims, err := s.service.ValidateToken(s.ctx, result.Token)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx, claims.SessionID))

	_, err = s.service.ValidateToken(s.ctx, result.Token)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))

	s.Run("logging out twice is not an error", func() {
		s.Require().NoError(s.service.Logout(s.ctx, claims.SessionID))
	})
}

func (s *AuthServiceSuite) TestSeedUser() {
	s.Run("duplicate email conflicts", func() {
		_, err := s.service.SeedUser(s.ctx, "dana@example.com", "Other", models.RoleEmployee, "", "pw")
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})

	s.Run("session records the parsed device", func() {
		result, err := s.login("dana@example.com", "correct horse")
		s.Require().NoError(err)
		claims, err := s.service.ValidateToken(s.ctx, result.Token)
		s.Require().NoError(err)

		sess, err := s.sessions.FindByID(s.ctx, claims.SessionID, s.now)
		s.Require().NoError(err)
		s.Contains(sess.Device, "Chrome")
		s.Equal("203.0.113.7", sess.ClientIP)
	})
}
