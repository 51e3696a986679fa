package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const TokenTTL = 12 * time.Hour

type StoreAPI interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	InsertUser(ctx context.Context, u User) error
}

type Service struct {
	store  StoreAPI
	secret string
}

func NewService(store StoreAPI, secret string) *Service {
	return &Service{store: store, secret: secret}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Role:       user.Role,
	}, TokenTTL)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}

// EnsureUser seeds a user if the email is not registered yet.
func (s *Service) EnsureUser(ctx context.Context, email, password, role, employeeID string) error {
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.InsertUser(ctx, User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   employeeID,
	})
}
