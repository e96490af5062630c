package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"foodbox/order-svc/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resetCodeTTL      = time.Hour
	resetCodeAttempts = 5
)

type AccountService struct {
	users    UserRepository
	codes    ResetCodeStore
	tokens   TokenIssuer
	notifier Notifier
	logger   *zap.Logger
}

func NewAccountService(users UserRepository, codes ResetCodeStore, tokens TokenIssuer, notifier Notifier, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *AccountService) Signup(ctx context.Context, name, email, password, address string) (*domain.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      strings.TrimSpace(address),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: user already exists with this email", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return s.authResult(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := checkPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.authResult(user)
}

func (s *AccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes only the fields that are set. The password changes only when
// both the current and the new password are given.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if address := strings.TrimSpace(update.Address); address != "" {
		user.Address = address
	}

	if update.CurrentPassword != "" && update.NewPassword != "" {
		ok, err := checkPassword(user.PasswordHash, update.CurrentPassword)
		if err != nil {
			return nil, fmt.Errorf("check password: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: current password is incorrect", ErrInvalidInput)
		}
		if len(update.NewPassword) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
		}
		hash, err := hashPassword(update.NewPassword)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ForgotPassword mails a one-time code. A failed send removes the code so it can never be used.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	code, err := s.reserveCode(ctx, user.ID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP for password reset is: %s. It will expire in 1 hour.", code)
	if !s.notifier.Send(ctx, user.Email, "Password Reset OTP", body) {
		if err := s.codes.Delete(ctx, code); err != nil {
			s.logger.Warn("delete unsent reset code", zap.String("user_id", user.ID), zap.Error(err))
		}
		return ErrDelivery
	}

	s.logger.Info("password reset code sent", zap.String("user_id", user.ID))
	return nil
}

func (s *AccountService) reserveCode(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < resetCodeAttempts; attempt++ {
		code, err := newResetCode()
		if err != nil {
			return "", fmt.Errorf("generate reset code: %w", err)
		}
		saved, err := s.codes.Save(ctx, code, userID, resetCodeTTL)
		if err != nil {
			return "", fmt.Errorf("save reset code: %w", err)
		}
		if saved {
			return code, nil
		}
	}
	return "", errors.New("no free reset code available")
}

func (s *AccountService) ResetPassword(ctx context.Context, code, password string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidOTP
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	userID, err := s.codes.Consume(ctx, code)
	if err != nil {
		return fmt.Errorf("consume reset code: %w", err)
	}
	if userID == "" {
		return ErrInvalidOTP
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password reset", zap.String("user_id", userID))
	return nil
}

func (s *AccountService) authResult(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
