package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidAPIKey      = errors.New("invalid api key")
)

// apiKeyPrefix marks every issued key so stray tokens are recognizable in
// logs and support tickets.
const apiKeyPrefix = "tg_"

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// APIKey represents an issued API key. Only the bcrypt hash of the secret is
// stored; the plaintext is shown once at creation.
type APIKey struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Lookup    string    `json:"-"`
	Hash      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// APIKeyRepository defines the interface for API key persistence
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByLookup(ctx context.Context, lookup string) (*APIKey, error)
	DeleteByID(ctx context.Context, userID, id string) error
}

// Service defines the authentication service interface
type Service interface {
	Register(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	CreateAPIKey(ctx context.Context, userID, name string) (*APIKey, string, error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
}

// Config holds authentication configuration
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		SecretKey:     "change-me-in-production",
		TokenDuration: 24 * time.Hour,
	}
}

// JWTService implements the Service interface
type JWTService struct {
	config Config
	users  UserRepository
	keys   APIKeyRepository
}

// NewJWTService creates a new JWT-based authentication service
func NewJWTService(config Config, users UserRepository, keys APIKeyRepository) *JWTService {
	if config.SecretKey == "" {
		config.SecretKey = DefaultConfig().SecretKey
	}
	if config.TokenDuration == 0 {
		config.TokenDuration = DefaultConfig().TokenDuration
	}
	return &JWTService{
		config: config,
		users:  users,
		keys:   keys,
	}
}

// Register creates a new user with hashed password
func (s *JWTService) Register(ctx context.Context, email, password string) (*User, error) {
	existing, _ := s.users.GetByEmail(ctx, email)
	if existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &User{
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *JWTService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// CreateAPIKey issues a new API key for programmatic access. Returns the key
// record and the plaintext secret; the plaintext is not recoverable later.
func (s *JWTService) CreateAPIKey(ctx context.Context, userID, name string) (*APIKey, string, error) {
	lookup := uuid.NewString()[:8]
	secret := apiKeyPrefix + lookup + uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	key := &APIKey{
		UserID:    userID,
		Name:      name,
		Lookup:    lookup,
		Hash:      string(hash),
		CreatedAt: time.Now(),
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", err
	}

	return key, secret, nil
}

// ValidateAPIKey resolves a plaintext API key to its stored record. The short
// lookup segment narrows the row; bcrypt comparison proves possession.
func (s *JWTService) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	if !strings.HasPrefix(key, apiKeyPrefix) || len(key) < len(apiKeyPrefix)+8 {
		return nil, ErrInvalidAPIKey
	}

	lookup := key[len(apiKeyPrefix) : len(apiKeyPrefix)+8]
	stored, err := s.keys.GetByLookup(ctx, lookup)
	if err != nil {
		return nil, ErrInvalidAPIKey
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.Hash), []byte(key)); err != nil {
		return nil, ErrInvalidAPIKey
	}

	return stored, nil
}

func (s *JWTService) generateToken(user *User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
