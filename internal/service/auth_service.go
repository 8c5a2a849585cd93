package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nextgenbank/onboarding-api/internal/config"
	"github.com/nextgenbank/onboarding-api/internal/dto"
	"github.com/nextgenbank/onboarding-api/internal/mailer"
	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/pkg/apperror"
)

const (
	otpLength      = 6
	usernameLength = 12
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisteredUser, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error)
	VerifyOTP(ctx context.Context, otp string) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *TokenManager
	mail   mailer.Mailer

	bankName        string
	loginAttempts   int
	otpLifetime     time.Duration
	lockoutDuration time.Duration

	now func() time.Time
}

func NewAuthService(repo repository.UserRepository, tokens *TokenManager, mail mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{
		repo:            repo,
		tokens:          tokens,
		mail:            mail,
		bankName:        cfg.BankName,
		loginAttempts:   cfg.LoginAttempts,
		otpLifetime:     cfg.OTPLifetime,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisteredUser, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.New(http.StatusBadRequest, "an account with this email already exists", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:         generateUsername(s.bankName),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:     string(hashed),
		FirstName:        input.FirstName,
		MiddleName:       input.MiddleName,
		LastName:         input.LastName,
		IDNo:             input.IDNo,
		SecurityQuestion: model.SecurityQuestion(input.SecurityQuestion),
		SecurityAnswer:   input.SecurityAnswer,
		Role:             model.RoleCustomer,
		AccountStatus:    model.AccountStatusActive,
	}

	// The placeholder profile is created in the same transaction; there is no
	// separate signal or event hop between user and profile creation.
	if err := s.repo.Create(ctx, user, model.NewDefaultProfile(user.ID)); err != nil {
		return nil, err
	}

	return &dto.RegisteredUser{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName(),
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.AccountStatus == model.AccountStatusLocked {
		if user.IsLockedOut(now, s.lockoutDuration) {
			return nil, s.lockedError(user, now)
		}
		// Lockout window elapsed: unlock and let the attempt proceed.
		s.resetLockout(user)
		if err := s.repo.Save(ctx, user); err != nil {
			return nil, err
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, s.handleFailedLogin(ctx, user, now)
	}

	s.resetLockout(user)

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	expiry := now.Add(s.otpLifetime)
	user.OTP = otp
	user.OTPExpiryTime = &expiry

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mail.SendOTP(ctx, user.Email, otp, s.otpLifetime); err != nil {
		log.Printf("failed to send OTP email to %s: %v", user.Email, err)
	}
	log.Printf("OTP sent for login to user: %s", user.Email)

	return &dto.LoginResponse{
		Success: "OTP sent to your email",
		Email:   user.Email,
	}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, otp string) (*dto.TokenPair, error) {
	now := s.now()

	user, err := s.repo.FindByOTP(ctx, otp, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidOTP
		}
		return nil, err
	}

	if user.IsLockedOut(now, s.lockoutDuration) {
		return nil, s.lockedError(user, now)
	}

	// Consume the code: single use.
	user.OTP = ""
	user.OTPExpiryTime = nil
	s.resetLockout(user)

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.MintPair(user.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("successful login with OTP: %s", user.Email)
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	if user.IsLockedOut(s.now(), s.lockoutDuration) {
		return nil, s.lockedError(user, s.now())
	}

	return s.tokens.MintPair(user.ID)
}

// handleFailedLogin increments the failure counter, locks the account when
// the threshold is reached (notifying the customer once, best-effort) and
// returns the error the caller should surface.
func (s *authService) handleFailedLogin(ctx context.Context, user *model.User, now time.Time) error {
	user.FailedLoginAttempts++
	user.LastFailedLogin = &now

	justLocked := user.FailedLoginAttempts >= s.loginAttempts &&
		user.AccountStatus != model.AccountStatusLocked
	if justLocked {
		user.AccountStatus = model.AccountStatusLocked
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return err
	}
	log.Printf("failed login attempt %d for user: %s", user.FailedLoginAttempts, user.Email)

	if justLocked {
		if err := s.mail.SendAccountLocked(ctx, user.Email, user.FullName(), s.lockoutDuration); err != nil {
			log.Printf("failed to send account locked email to %s: %v", user.Email, err)
		}
		return apperror.New(
			http.StatusForbidden,
			fmt.Sprintf(
				"you have exceeded the maximum number of login attempts; your account has been locked for %d minutes and an email has been sent to you with further instructions",
				int(s.lockoutDuration.Minutes()),
			),
			apperror.ErrAccountLocked,
		)
	}

	return apperror.ErrInvalidCredentials
}

func (s *authService) lockedError(user *model.User, now time.Time) error {
	remaining := user.LockoutRemaining(now, s.lockoutDuration)
	minutes := int(remaining.Minutes())
	if remaining > time.Duration(minutes)*time.Minute {
		minutes++
	}
	return apperror.New(
		http.StatusForbidden,
		fmt.Sprintf(
			"account is locked due to multiple failed login attempts; please try again after %d minutes",
			minutes,
		),
		apperror.ErrAccountLocked,
	)
}

func (s *authService) resetLockout(user *model.User) {
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.AccountStatus = model.AccountStatusActive
}

func generateOTP() (string, error) {
	const digits = "0123456789"
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate OTP: %w", err)
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}

// generateUsername builds a "<BANK-INITIALS>-<RANDOM>" account number style
// username, always usernameLength bytes. Initials that would leave no room
// for at least one random character are dropped.
func generateUsername(bankName string) string {
	var prefix strings.Builder
	for _, word := range strings.Fields(bankName) {
		r, size := utf8.DecodeRuneInString(strings.ToUpper(word))
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		if prefix.Len()+utf8.RuneLen(r) > usernameLength-2 {
			break
		}
		prefix.WriteRune(r)
	}

	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	remaining := usernameLength - prefix.Len() - 1
	suffix := make([]byte, remaining)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		suffix[i] = charset[n.Int64()]
	}

	return prefix.String() + "-" + string(suffix)
}
