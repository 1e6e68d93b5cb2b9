package service

import (
	"context"
	"errors"

	"shiftly/config"
	"shiftly/internal/auth"
	"shiftly/internal/domain"
	"shiftly/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("role must be BUSINESS or WORKER")
)

type AuthService struct {
	cfg   *config.Config
	users UserStore
}

func NewAuthService(cfg *config.Config, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

type RegisterInput struct {
	Email       string
	Password    string
	Role        string
	FullName    string
	CompanyName string
	Phone       string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, string, error) {
	if in.Role != domain.RoleBusiness && in.Role != domain.RoleWorker {
		return nil, "", "", ErrInvalidRole
	}
	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		FullName:     in.FullName,
		CompanyName:  in.CompanyName,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (access, refresh string, err error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	access, _ = auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ = auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return access, refresh, nil
}
