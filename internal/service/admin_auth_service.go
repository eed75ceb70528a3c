package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/repository"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// AdminUserRepo is the admin account storage used for login.
type AdminUserRepo interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	TouchLastLogin(ctx context.Context, id int) error
}

// NewAdminInput describes an admin account to create.
type NewAdminInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=administrator operator viewer"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string           `json:"token"`
	User  models.AdminUser `json:"user"`
}

type AdminAuthService struct {
	adminRepo AdminUserRepo
	signer    *utils.JWTSigner
	validate  *validator.Validate
}

func NewAdminAuthService(adminRepo AdminUserRepo, signer *utils.JWTSigner) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, signer: signer, validate: validator.New()}
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsNoRows(err) {
			log.Error().Err(err).Str("email", email).Msg("Failed to get user by email")
			return nil, err
		}
		return nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.signer.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.adminRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("Login successful")
	return &LoginResult{Token: token, User: *user}, nil
}

func (s *AdminAuthService) CreateAdmin(ctx context.Context, in NewAdminInput) (*models.AdminUser, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		verr := utils.NewValidationError()
		for _, fe := range fieldErrs {
			verr.Add(strings.ToLower(fe.Field()), strings.ToLower(fe.Field())+" failed the "+fe.Tag()+" rule")
		}
		return nil, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Name:         in.Name,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
