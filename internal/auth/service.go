package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/ghostmode/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAdminAlreadyExists = errors.New("auth: admin already exists")
	ErrAdminNotFound      = errors.New("auth: admin not found")
	ErrInvalidRole        = errors.New("auth: invalid role")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// ValidRole reports whether role is one of the console roles.
func ValidRole(role string) bool {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleModerator:
		return true
	default:
		return false
	}
}

// Service authenticates console admins and manages their accounts.
type Service struct {
	admins     domain.AdminUserRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(admins domain.AdminUserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		admins:     admins,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register provisions an admin account. The password is stored as an argon2id hash.
func (s *Service) Register(ctx context.Context, email, password, name, role string) (*domain.AdminUser, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("auth.Register: %w: %q", ErrInvalidRole, role)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.admins.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrAdminAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now()
	admin := &domain.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.Register: %w", ErrAdminAlreadyExists)
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return admin, nil
}

// Bootstrap creates the first super admin when no account with email exists.
func (s *Service) Bootstrap(ctx context.Context, email, password, name string) error {
	_, err := s.Register(ctx, email, password, name, domain.RoleSuperAdmin)
	if errors.Is(err, ErrAdminAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth.Bootstrap: %w", err)
	}
	log.Info().Str("email", email).Msg("auth: bootstrap super admin created")
	return nil
}

// Login validates email/password and returns access + refresh tokens.
func (s *Service) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, admin.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, admin.ID, admin.Role, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, admin.ID, admin.Role, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token with
// the admin's current role.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	adminID, err := uuid.Parse(claims.AdminID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid admin id: %w", err)
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrAdminNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, admin.ID, admin.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

func (s *Service) GetAdmin(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.GetAdmin: %w", ErrAdminNotFound)
		}
		return nil, fmt.Errorf("auth.GetAdmin: %w", err)
	}

	return admin, nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]*domain.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.ListAdmins: %w", err)
	}
	return admins, nil
}

// SetGhostMode toggles ghost mode for an admin and returns the updated account.
func (s *Service) SetGhostMode(ctx context.Context, id uuid.UUID, enabled bool) (*domain.AdminUser, error) {
	if err := s.admins.SetGhostMode(ctx, id, enabled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.SetGhostMode: %w", ErrAdminNotFound)
		}
		return nil, fmt.Errorf("auth.SetGhostMode: %w", err)
	}

	admin, err := s.GetAdmin(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth.SetGhostMode: %w", err)
	}
	log.Info().Str("admin_id", id.String()).Bool("ghost_mode", enabled).Msg("auth: ghost mode toggled")
	return admin, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
