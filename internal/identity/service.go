package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const roleLookupTimeout = 3 * time.Second

type Service struct {
	repo      *repository.UserRepository
	jwtSecret []byte // Stored in env (JWT_SECRET)
	jwtExpiry time.Duration
}

func NewService(repo *repository.UserRepository, secret string, expiryHours int) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(secret),
		jwtExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Creates a new customer account
func (s *Service) Register(ctx context.Context, email, password, name string) error {
	existingUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existingUser != nil {
		return errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
	}

	return s.repo.Create(ctx, user)
}

// Authenticates a user and returns a signed session token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// Resolves a session token. A token that fails validation yields (nil, nil):
// the caller simply has no session.
func (s *Service) GetSession(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, nil
	}

	session := &Session{
		UserID: userID,
	}
	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return session, nil
}

// Fetches the staff flag for a user. Errors here must surface to the caller -
// the authorizer fails closed on them.
func (s *Service) GetRole(ctx context.Context, userID uuid.UUID) (Role, error) {
	ctx, cancel := context.WithTimeout(ctx, roleLookupTimeout)
	defer cancel()

	user, err := s.repo.FindById(ctx, userID.String())
	if err != nil {
		return Role{}, fmt.Errorf("failed to fetch role for %s: %w", userID, err)
	}
	if user == nil {
		// Account deleted after the token was issued. Not staff.
		return Role{}, nil
	}

	return Role{IsStaff: user.IsStaff}, nil
}

// Retrieves a user by ID
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindById(ctx, id)
}
