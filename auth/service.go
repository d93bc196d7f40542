// Package auth issues and validates the JWTs protecting the HTTP API.
// Passwords are stored as bcrypt hashes; tokens are HMAC-signed and carry the
// user's role for admin gating.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
	"fleet-charging/repositories/interfaces"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUsernameTaken      = errors.New("auth: username already registered")
)

// Claims is the JWT payload.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles registration, login and token validation.
type Service struct {
	users     interfaces.UserRepositoryInterface
	secret    []byte
	expiresIn time.Duration
}

func NewService(users interfaces.UserRepositoryInterface, secret string, expiresIn time.Duration) *Service {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &Service{
		users:     users,
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(username, password, role string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.New("auth: username required")
	}
	if password == "" {
		return nil, errors.New("auth: password required")
	}
	if role == "" {
		role = RoleUser
	}

	if _, err := s.users.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !base.IsEntityNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	return s.users.Create(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Login authenticates a user and issues a signed token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(username, password string) (string, *models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		if base.IsEntityNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) generateToken(userID uint, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// UserByID loads the user record behind a validated token.
func (s *Service) UserByID(id uint) (*models.User, error) {
	return s.users.GetByID(id)
}

// ValidateToken verifies the signature and expiry and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("auth: invalid claims")
}
