package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/helpdesk-kit/support-desk-api/config"
	"github.com/helpdesk-kit/support-desk-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenClaims represents our custom JWT claims
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, credential verification and tokens
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates a new auth service instance
func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.JWTTTL,
	}
}

// Register creates a new user account. Every new account gets the client
// role; privilege cannot be self-elevated at signup.
func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	// Check if email already exists
	var existing models.User
	result := s.db.Where("email = ?", email).First(&existing)
	if result.RowsAffected > 0 {
		return nil, ErrEmailTaken
	}

	// Look up the client role
	var clientRole models.Role
	if err := s.db.Where("name = ?", string(models.RoleClient)).First(&clientRole).Error; err != nil {
		return nil, err
	}

	// Hash password; the plaintext is never stored
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       clientRole.ID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	user.Role = clientRole
	return &user, nil
}

// Login authenticates a user by email and password. Unknown emails and
// wrong passwords both return ErrInvalidCredentials so the response gives
// no user-enumeration signal.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID retrieves a user with their role loaded
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GenerateToken issues a signed, time-limited JWT for a user
func (s *AuthService) GenerateToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)

	claims := TokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ValidateToken verifies a JWT and returns its claims. Verification fails
// closed: any signature, expiry or format problem rejects the token.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if !models.RoleName(claims.Role).Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
