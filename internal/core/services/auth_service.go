package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portssvc "github.com/litc-ly/claims_backend/internal/core/ports/services"
	"github.com/litc-ly/claims_backend/internal/middleware"
	"github.com/litc-ly/claims_backend/internal/utils"
	"github.com/litc-ly/claims_backend/pkg/config"
)

// authService validates credentials and issues the access tokens carried on
// every claims API request. Google sign-in matches an existing account by
// email; accounts are never provisioned from a Google identity.
type authService struct {
	cfg          *config.Config
	userSvc      portssvc.UserReaderSvc
	oauth2Config *oauth2.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userSvc portssvc.UserReaderSvc) portssvc.AuthSvcFacade {
	return &authService{
		cfg:     cfg,
		userSvc: userSvc,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Ensure authService implements the portssvc.AuthSvcFacade interface
var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login implements portssvc.AuthSvcFacade.
func (s *authService) Login(ctx context.Context, username string, password string) (*domain.User, string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.GetUserByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Same error as a bad password so usernames cannot be probed.
			return nil, "", time.Time{}, apperrors.ErrUnauthorized
		}
		return nil, "", time.Time{}, fmt.Errorf("failed to look up user for login: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Password mismatch on login", slog.String("username", username))
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}

	return s.issueToken(ctx, user)
}

// LoginWithGoogleIDToken implements portssvc.AuthSvcFacade.
func (s *authService) LoginWithGoogleIDToken(ctx context.Context, idTokenString string) (*domain.User, string, time.Time, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, "", time.Time{}, errors.New("google client ID is not configured")
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, "", time.Time{}, fmt.Errorf("%w: google ID token carries no email", apperrors.ErrUnauthorized)
	}
	return s.loginByEmail(ctx, email)
}

// GenerateStateString implements portssvc.AuthSvcFacade.
func (s *authService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GoogleLoginURL implements portssvc.AuthSvcFacade.
func (s *authService) GoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// CompleteGoogleLogin implements portssvc.AuthSvcFacade.
func (s *authService) CompleteGoogleLogin(ctx context.Context, code string) (*domain.User, string, time.Time, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: failed to exchange oauth code: %v", apperrors.ErrUnauthorized, err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !info.VerifiedEmail {
		return nil, "", time.Time{}, fmt.Errorf("%w: google account email not verified", apperrors.ErrUnauthorized)
	}
	return s.loginByEmail(ctx, info.Email)
}

func (s *authService) loginByEmail(ctx context.Context, email string) (*domain.User, string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userSvc.GetUserByUsername(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Warn("Google sign-in for unknown account", slog.String("email", email))
			return nil, "", time.Time{}, apperrors.ErrUnauthorized
		}
		return nil, "", time.Time{}, fmt.Errorf("failed to look up user for google login: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, "", time.Time{}, apperrors.ErrUnauthorized
	}
	return s.issueToken(ctx, user)
}

func (s *authService) issueToken(ctx context.Context, user *domain.User) (*domain.User, string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	token, expiry, err := utils.GenerateJWT(user, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign access token",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return nil, "", time.Time{}, fmt.Errorf("%w: failed to sign access token", apperrors.ErrInternal)
	}

	logger.Info("Access token issued",
		slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return user, token, expiry, nil
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var info domain.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info from google: %w", err)
	}
	return &info, nil
}
