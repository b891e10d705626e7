// Package auth is the identity collaborator: it authenticates credentials
// and issues/verifies bearer tokens. It knows nothing about quizzes;
// ownership checks stay in the quiz domain.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Credential is a user known to the service. Passwords are bcrypt-hashed
// at registration time and never kept in plain form.
type Credential struct {
	UserID   int64
	Email    string
	Password string
}

type user struct {
	id           int64
	passwordHash []byte
}

type Service struct {
	secret   []byte
	tokenTTL time.Duration
	users    map[string]user
}

func NewService(secret string, tokenTTL time.Duration, credentials []Credential) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	users := make(map[string]user, len(credentials))
	for _, credential := range credentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(credential.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		users[normalizeEmail(credential.Email)] = user{
			id:           credential.UserID,
			passwordHash: hash,
		}
	}

	return &Service{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		users:    users,
	}, nil
}

// Authenticate checks credentials and returns the user id on success.
func (s *Service) Authenticate(email, password string) (int64, error) {
	known, ok := s.users[normalizeEmail(email)]
	if !ok {
		// Run the comparison anyway so unknown emails cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000"), []byte(password))
		return 0, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(known.passwordHash, []byte(password)); err != nil {
		return 0, ErrInvalidCredentials
	}
	return known.id, nil
}

func (s *Service) IssueToken(userID int64, email string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  normalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) VerifyToken(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
