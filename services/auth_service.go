package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"contact-intake-api/models"
	"contact-intake-api/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Default credential written on first boot. It must be rotated by hand.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@example.com"
)

// Claims is the JWT payload issued to the admin.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	IsMobile bool   `json:"isMobile,omitempty"`
	jwt.RegisteredClaims
}

// TokenPolicy decides the lifetime and extra claims of an issued token.
type TokenPolicy struct {
	Name     string
	TTL      time.Duration
	Role     string
	IsMobile bool
}

var (
	// ConsolePolicy is used by the web admin panel.
	ConsolePolicy = TokenPolicy{Name: "console", TTL: 24 * time.Hour}
	// MobilePolicy is used by the mobile app.
	MobilePolicy = TokenPolicy{Name: "mobile", TTL: 7 * 24 * time.Hour, Role: models.RoleAdmin, IsMobile: true}
)

// LoginResult is a signed token plus the admin it was issued to.
type LoginResult struct {
	Token string
	Admin models.Admin
}

// AuthService issues and verifies admin bearer tokens.
type AuthService struct {
	creds  store.CredentialStore
	secret []byte
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthService(creds store.CredentialStore, secret string, logger *slog.Logger) (*AuthService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		creds:  creds,
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
	}, nil
}

// EnsureAdmin writes the default admin record unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	hash, err := HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	created, err := s.creds.InitializeIfAbsent(ctx, models.Admin{
		Username:     DefaultAdminUsername,
		PasswordHash: hash,
		Email:        DefaultAdminEmail,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("initialize admin credentials: %w", err)
	}
	if created {
		s.logger.Warn("default admin credentials created; change the password before exposing the service",
			"username", DefaultAdminUsername)
	}
	return nil
}

// Login checks the credentials and signs a token under policy.
func (s *AuthService) Login(ctx context.Context, username, password string, policy TokenPolicy) (*LoginResult, error) {
	admin, err := s.creds.Get(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin credentials: %w", err)
	}

	// The hash is checked even for a wrong username to keep timing flat.
	passwordOK := CheckPasswordHash(password, admin.PasswordHash)
	if admin.Username != username || !passwordOK {
		s.logger.InfoContext(ctx, "login rejected", "username", username, "policy", policy.Name)
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(*admin, policy)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.InfoContext(ctx, "login succeeded", "username", username, "policy", policy.Name)
	return &LoginResult{Token: token, Admin: *admin}, nil
}

func (s *AuthService) generateToken(admin models.Admin, policy TokenPolicy) (string, error) {
	now := s.now()
	claims := Claims{
		Username: admin.Username,
		Role:     policy.Role,
		IsMobile: policy.IsMobile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(policy.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a bearer token. An empty token is ErrUnauthenticated; any
// token that fails signature, algorithm or expiry checks is ErrInvalidToken.
func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
