package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/guard"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

type API interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
}

type Sessions interface {
	Set(ctx context.Context, token string, role models.Role) error
	Get(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

type Service struct {
	api      API
	sessions Sessions
	validate *validator.Validate
}

func NewService(api API, sessions Sessions) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Login stores the returned token and role and reports the screen the user
// lands on. Nothing is stored when the service rejects the credentials.
func (s *Service) Login(ctx context.Context, email, password string) (guard.Screen, error) {
	logger := logging.FromContext(ctx)

	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return "", err
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		logger.Warn("Login failed", slog.String("error", err.Error()))

		if appErrors.HasCode(err, appErrors.ErrCodeNetwork) {
			return "", err
		}

		return "", appErrors.UnauthenticatedError("Invalid credentials").WithError(err)
	}

	if resp.Token == "" {
		return "", appErrors.UnauthenticatedError("Invalid credentials")
	}

	if err := s.sessions.Set(ctx, resp.Token, resp.UserType); err != nil {
		return "", err
	}

	logger.Info("Logged in", slog.String("role", string(resp.UserType)))

	return guard.Home(resp.UserType), nil
}

// Signup registers a new account. The user must log in afterwards.
func (s *Service) Signup(ctx context.Context, req models.RegisterRequest) (guard.Screen, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.UserType == "" {
		req.UserType = models.RoleCustomer
	}

	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return "", err
	}

	if err := s.api.Register(ctx, req); err != nil {
		logging.FromContext(ctx).Warn("Signup failed", slog.String("error", err.Error()))

		if appErrors.HasCode(err, appErrors.ErrCodeNetwork) {
			return "", err
		}

		return "", appErrors.ServerError("Signup failed", 0).WithError(err)
	}

	return guard.Login, nil
}

// Logout forgets the session. The cart is left as it is.
func (s *Service) Logout(ctx context.Context) (guard.Screen, error) {
	if err := s.sessions.Clear(ctx); err != nil {
		return "", err
	}

	return guard.Login, nil
}

type Identity struct {
	Role      models.Role
	Subject   string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// WhoAmI decodes the stored token for display. The signature is not checked
// and an expired token is still reported as the current session.
func (s *Service) WhoAmI(ctx context.Context) (*Identity, error) {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		return nil, appErrors.UnauthenticatedError("Not logged in")
	}

	id := &Identity{Role: sess.Role}

	var claims models.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, &claims); err != nil {
		logging.FromContext(ctx).Debug("Session token is not a readable JWT", slog.String("error", err.Error()))
		return id, nil
	}

	id.Subject = claims.Subject
	if claims.IssuedAt != nil {
		id.IssuedAt = &claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = &claims.ExpiresAt.Time
	}

	return id, nil
}
