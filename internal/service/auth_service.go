package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
	"reporthub/internal/repository"
	"reporthub/internal/security"
	"reporthub/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAllowlisted     = errors.New("email is not authorized for admin access")
	ErrLastSuperAdmin     = errors.New("cannot demote the last super admin")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// passwordResetLifetime is how long an emailed reset link stays valid
const passwordResetLifetime = time.Hour

// Mailer sends account emails
type Mailer interface {
	IsEnabled() bool
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
}

// AuthService handles administrator authentication and roles
type AuthService struct {
	db              *database.DB
	userRepo        *repository.UserRepository
	mailer          Mailer
	sessionDuration time.Duration
	authTimeout     time.Duration
}

// NewAuthService creates a new auth service. mailer may be nil.
func NewAuthService(db *database.DB, userRepo *repository.UserRepository, mailer Mailer, sessionDuration, authTimeout time.Duration) *AuthService {
	return &AuthService{
		db:              db,
		userRepo:        userRepo,
		mailer:          mailer,
		sessionDuration: sessionDuration,
		authTimeout:     authTimeout,
	}
}

// SeedAllowlist makes sure the configured admin emails may sign up
func (s *AuthService) SeedAllowlist(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	if err := s.userRepo.AddToAllowlist(ctx, emails...); err != nil {
		return err
	}
	log.Printf("Admin allowlist seeded with %d emails", len(emails))
	return nil
}

// IsAdminEmail reports whether email may hold an admin account
func (s *AuthService) IsAdminEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()
	ok, err := s.userRepo.IsAllowlisted(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return ok, nil
}

// Signup creates an admin account for an allowlisted email
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	allowed, err := s.IsAdminEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotAllowlisted
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, passwordHash, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.mailer != nil && s.mailer.IsEnabled() {
		if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) newSession(ctx context.Context, userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)
	session, err := s.userRepo.CreateSession(ctx, sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpired removes expired sessions and reset tokens
func (s *AuthService) CleanupExpired(ctx context.Context) error {
	if err := s.userRepo.DeleteExpiredSessions(ctx); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if err := s.userRepo.DeleteExpiredPasswordResetTokens(ctx); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}

// OAuthLogin authenticates an allowlisted user through an OAuth provider,
// linking or creating the account on first use
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		allowed, err := s.IsAdminEmail(ctx, email)
		if err != nil {
			return nil, nil, err
		}
		existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}

		switch {
		case existingUser != nil:
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		case !allowed:
			return nil, nil, ErrNotAllowlisted
		default:
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			newUser, err := s.userRepo.CreateUser(ctx, email, "", name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(ctx, newUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
	}

	session, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// IsAdmin reports whether user currently holds an admin role. Lookup
// failures deny access, except when the admin tables do not exist yet:
// then access is granted so a migration window cannot lock everyone out.
func (s *AuthService) IsAdmin(ctx context.Context, user *models.User) bool {
	if user == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	role, err := s.userRepo.GetRole(ctx, user.ID)
	if err != nil {
		if s.db != nil && s.db.Dialect.IsUndefinedTable(err) {
			log.Printf("Admin tables missing, granting admin access to %s: %v", user.Email, err)
			return true
		}
		log.Printf("Admin check failed for %s, denying access: %v", user.Email, err)
		return false
	}
	return role.Valid()
}

// IsSuperAdmin reports whether user currently holds the super admin role.
// Any failure denies.
func (s *AuthService) IsSuperAdmin(ctx context.Context, user *models.User) bool {
	if user == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	role, err := s.userRepo.GetRole(ctx, user.ID)
	if err != nil {
		log.Printf("Super admin check failed for %s, denying access: %v", user.Email, err)
		return false
	}
	return role == models.RoleSuperAdmin
}

// ListAdmins returns every admin account
func (s *AuthService) ListAdmins(ctx context.Context, actor *models.User) ([]models.User, error) {
	if !s.IsSuperAdmin(ctx, actor) {
		return nil, ErrForbidden
	}
	return s.userRepo.ListUsers(ctx)
}

// SetAdminRole changes the role of another account
func (s *AuthService) SetAdminRole(ctx context.Context, actor *models.User, targetID int64, role models.AdminRole) error {
	if !s.IsSuperAdmin(ctx, actor) {
		return ErrForbidden
	}
	if !role.Valid() {
		return validation.ValidationError{Field: "role", Message: "unknown role"}
	}

	current, err := s.userRepo.GetRole(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to get role: %w", err)
	}
	if current == "" {
		return ErrNotFound
	}
	if current == models.RoleSuperAdmin && role != models.RoleSuperAdmin {
		n, err := s.userRepo.CountByRole(ctx, models.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if n <= 1 {
			return ErrLastSuperAdmin
		}
	}
	return s.userRepo.UpdateRole(ctx, targetID, role)
}

// RequestPasswordReset creates a password reset token and sends an email.
// Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}
	return s.sendPasswordReset(ctx, user)
}

// SendPasswordResetFor emails a reset link to another admin account
func (s *AuthService) SendPasswordResetFor(ctx context.Context, actor *models.User, userID int64) error {
	if !s.IsSuperAdmin(ctx, actor) {
		return ErrForbidden
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	return s.sendPasswordReset(ctx, user)
}

func (s *AuthService) sendPasswordReset(ctx context.Context, user *models.User) error {
	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_ = s.userRepo.DeleteUserPasswordResetTokens(ctx, user.ID)

	expiresAt := time.Now().Add(passwordResetLifetime)
	if err := s.userRepo.CreatePasswordResetToken(ctx, token, user.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if s.mailer != nil && s.mailer.IsEnabled() {
		if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}
	return nil
}

// ValidatePasswordResetToken checks if a reset token is valid
func (s *AuthService) ValidatePasswordResetToken(ctx context.Context, token string) (bool, error) {
	resetToken, err := s.userRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}
	return resetToken != nil && !resetToken.Used && !resetToken.IsExpired(), nil
}

// ResetPassword sets a new password using a valid token and signs the user
// out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return ErrInvalidResetToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.MarkPasswordResetTokenAsUsed(ctx, token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	if err := s.userRepo.DeleteUserSessions(ctx, resetToken.UserID); err != nil {
		return fmt.Errorf("failed to end sessions: %w", err)
	}
	return nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
