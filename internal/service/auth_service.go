package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"
	"uny-compass-be/internal/pkg/mailer"
	"uny-compass-be/internal/repository/specification"
	"uny-compass-be/internal/repository/unitofwork"
	"uny-compass-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userId uint) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uint, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdatePassword(ctx context.Context, userId uint, req *dto.UpdatePasswordRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	Logout(ctx context.Context, userId uint) error
}

type authService struct {
	uowFactory    unitofwork.RepositoryFactory
	tokens        ITokenService
	emailService  mailer.IEmailService
	publisher     events.Publisher
	logger        logger.ILogger
	resetTokenTTL time.Duration
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	tokens ITokenService,
	emailService mailer.IEmailService,
	publisher events.Publisher,
	log logger.ILogger,
	resetTokenTTL time.Duration,
) IAuthService {
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &authService{
		uowFactory:    uowFactory,
		tokens:        tokens,
		emailService:  emailService,
		publisher:     publisher,
		logger:        log,
		resetTokenTTL: resetTokenTTL,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareAgainstDummy burns the same bcrypt time as a real check for unknown users.
func compareAgainstDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, apperror.Validation("Username, email, and password are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.Validation("Password must be at least 6 characters long")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.UsernameOrEmailTaken{Username: username, Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("Username or email already exists")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// the unique indexes still catch a concurrent registration here
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Id, user.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("AUTH", "user registered", map[string]interface{}{"user_id": user.Id})
	publishEvent(s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id":  user.Id,
		"username": user.Username,
	})

	return &dto.AuthResponse{User: dto.NewUserDTO(user), Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return nil, apperror.Validation("Username and password are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsernameOrEmail{Identifier: identifier})
	if err != nil {
		return nil, err
	}
	if user == nil {
		compareAgainstDummy(req.Password)
		return nil, apperror.Auth("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Auth("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.Id, user.Username)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	publishEvent(s.publisher, s.logger, events.UserLogin, map[string]interface{}{
		"user_id": user.Id,
		"time":    time.Now().Format(time.RFC3339),
	})

	return &dto.AuthResponse{User: dto.NewUserDTO(user), Token: token}, nil
}

func (s *authService) findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uint) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func (s *authService) GetProfile(ctx context.Context, userId uint) (*dto.ProfileResponse, error) {
	user, err := s.findUser(ctx, s.uowFactory.NewUnitOfWork(ctx), userId)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{User: dto.NewUserDTO(user)}, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userId uint, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apperror.Validation("Email is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	taken, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email}, specification.ExcludeID{ID: userId})
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, apperror.Conflict("Email already in use")
	}

	if err := uow.UserRepository().UpdateEmail(ctx, userId, email); err != nil {
		return nil, err
	}
	user.Email = email

	return &dto.ProfileResponse{User: dto.NewUserDTO(user)}, nil
}

func (s *authService) UpdatePassword(ctx context.Context, userId uint, req *dto.UpdatePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperror.Validation("Current password and new password are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apperror.Validation("New password must be at least 6 characters long")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperror.Auth("Current password is incorrect")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return uow.UserRepository().UpdatePassword(ctx, userId, hash)
}

func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return apperror.Validation("Email is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil || user == nil {
		// unknown addresses get the same answer as known ones
		return nil
	}

	resetToken := &entity.PasswordResetToken{
		UserId:    user.Id,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTokenTTL),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
		s.logger.Error("AUTH", "failed to store reset token", map[string]interface{}{"user_id": user.Id, "error": err})
		return nil
	}

	go func(to, token string) {
		if err := s.emailService.SendResetToken(to, token); err != nil {
			s.logger.Error("AUTH", "failed to send reset email", map[string]interface{}{"error": err})
		}
	}(user.Email, resetToken.Token)

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.Token == "" || req.NewPassword == "" {
		return apperror.Validation("Token and new password are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apperror.Validation("Password must be at least 6 characters long")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	token, err := uow.UserRepository().FindPasswordResetToken(ctx, specification.ByToken{Token: req.Token})
	if err != nil {
		return err
	}
	if token == nil || token.Used || time.Now().After(token.ExpiresAt) {
		return apperror.Validation("Invalid or expired reset token")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// claim the token first so a concurrent reset with the same token loses
	if err := uow.UserRepository().MarkTokenUsed(ctx, token.Id); err != nil {
		return err
	}
	if err := uow.UserRepository().UpdatePassword(ctx, token.UserId, hash); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(s.publisher, s.logger, events.PasswordReset, map[string]interface{}{"user_id": token.UserId})
	return nil
}

// Logout has nothing to revoke since tokens are stateless; it only records the event.
func (s *authService) Logout(ctx context.Context, userId uint) error {
	publishEvent(s.publisher, s.logger, events.UserLogout, map[string]interface{}{"user_id": userId})
	return nil
}
