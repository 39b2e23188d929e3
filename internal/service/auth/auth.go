package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/authorize"
	"github.com/iequus/iequus_backend/pkg/email"
	"github.com/iequus/iequus_backend/pkg/token"
	"github.com/iequus/iequus_backend/pkg/util/password"
	"github.com/iequus/iequus_backend/pkg/validate"
)

const (
	maxLoginAttempts = 5
	loginLockWindow  = 15 * time.Minute
	notifyTimeout    = 30 * time.Second
)

func redisKeyLoginAttempts(email string) string { return "login:attempts:" + email }

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Name             string `validate:"required"`
	Email            string `validate:"required"`
	Password         string `validate:"required"`
	LicenseID        string `validate:"required"`
	PhoneNumber      *string
	PhoneCountryCode *string
	HospitalID       *int64
}

type LoginResult struct {
	AccessToken  string
	ExpiresAt    time.Time
	Veterinarian *repo.Veterinarian
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*repo.Veterinarian, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, veterinarianID int64, oldPassword, newPassword string) error

	// Authenticate verifies a bearer token and that its subject still exists.
	Authenticate(ctx context.Context, rawToken string) (int64, error)
}

type Deps struct {
	DB     *repo.DB
	Redis  redis.UniversalClient
	Hasher *password.Hasher
	Policy password.Policy
	Tokens *token.Manager
	Mail   email.Sender
	Authz  authorize.IAuthorization
	Logger *slog.Logger
}

type authService struct {
	Deps
}

func New(d Deps) Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &authService{Deps: d}
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*repo.Veterinarian, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.LicenseID = strings.TrimSpace(req.LicenseID)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	addr, err := validate.Email(req.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPhone(req.PhoneNumber, req.PhoneCountryCode); err != nil {
		return nil, err
	}
	if err := s.Policy.Check(req.Password, addr, req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	if req.HospitalID != nil {
		if _, err := s.DB.Hospitals.Get(ctx, *req.HospitalID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrHospitalNotFound
			}
			return nil, err
		}
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	vet := &repo.Veterinarian{
		Name:             req.Name,
		Email:            addr,
		PhoneNumber:      req.PhoneNumber,
		PhoneCountryCode: req.PhoneCountryCode,
		PasswordHash:     hash,
		LicenseID:        req.LicenseID,
		HospitalID:       req.HospitalID,
	}
	if err := s.DB.Veterinarians.Create(ctx, vet); err != nil {
		switch {
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, repo.ErrForeignKey):
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}

	if vet.HospitalID != nil && s.Authz != nil {
		if err := authorize.AssignHospitalMember(ctx, s.Authz, vet.ID, *vet.HospitalID); err != nil {
			s.Logger.ErrorContext(ctx, "failed to grant hospital membership",
				"veterinarian_id", vet.ID, "hospital_id", *vet.HospitalID, "error", err)
		}
	}

	s.notify(ctx, email.BuildWelcomeEmail(vet.Email, vet.Name))
	return vet, nil
}

// checkPhone requires the number and its country code together.
func checkPhone(number, country *string) error {
	if number == nil && country == nil {
		return nil
	}
	if number == nil || country == nil {
		return fmt.Errorf("%w: phone number and country code must be given together", ErrInvalidInput)
	}
	return validate.Phone(*number, *country)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, rawEmail, pw string) (*LoginResult, error) {
	addr := validate.NormalizeEmail(rawEmail)
	if addr == "" || pw == "" {
		return nil, ErrInvalidCredentials
	}

	if s.locked(ctx, addr) {
		return nil, ErrAccountLocked
	}

	vet, err := s.DB.Veterinarians.GetByEmail(ctx, addr)
	if errors.Is(err, repo.ErrNotFound) {
		s.recordFailure(ctx, addr)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.Hasher.Verify(vet.PasswordHash, pw); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.recordFailure(ctx, addr)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	s.resetFailures(ctx, addr)

	if s.Hasher.NeedsRehash(vet.PasswordHash) {
		s.rehash(ctx, vet, pw)
	}

	tok, exp, err := s.Tokens.Issue(vet.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{AccessToken: tok, ExpiresAt: exp, Veterinarian: vet}, nil
}

func (s *authService) rehash(ctx context.Context, vet *repo.Veterinarian, pw string) {
	hash, err := s.Hasher.Hash(pw)
	if err != nil {
		s.Logger.WarnContext(ctx, "password rehash failed", "veterinarian_id", vet.ID, "error", err)
		return
	}
	var ch repo.Changes
	ch.Set("password_hash", hash)
	if err := s.DB.Veterinarians.Update(ctx, vet.ID, ch); err != nil {
		s.Logger.WarnContext(ctx, "password rehash not saved", "veterinarian_id", vet.ID, "error", err)
		return
	}
	vet.PasswordHash = hash
}

// Failed-login counters are advisory: redis errors never block a login.

func (s *authService) locked(ctx context.Context, addr string) bool {
	if s.Redis == nil {
		return false
	}
	n, err := s.Redis.Get(ctx, redisKeyLoginAttempts(addr)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.Logger.WarnContext(ctx, "login attempt lookup failed", "error", err)
		return false
	}
	return n >= maxLoginAttempts
}

func (s *authService) recordFailure(ctx context.Context, addr string) {
	if s.Redis == nil {
		return
	}
	key := redisKeyLoginAttempts(addr)
	pipe := s.Redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, loginLockWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		s.Logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}
}

func (s *authService) resetFailures(ctx context.Context, addr string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, redisKeyLoginAttempts(addr)).Err(); err != nil {
		s.Logger.WarnContext(ctx, "failed to reset login failures", "error", err)
	}
}

// ---------------------------------------------------------------------------
// Password change
// ---------------------------------------------------------------------------

func (s *authService) ChangePassword(ctx context.Context, veterinarianID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: oldPassword and newPassword are required", ErrInvalidInput)
	}

	vet, err := s.DB.Veterinarians.Get(ctx, veterinarianID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}

	if err := s.Hasher.Verify(vet.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return ErrWrongPassword
		}
		return fmt.Errorf("verify password: %w", err)
	}
	if newPassword == oldPassword {
		return ErrSamePassword
	}
	if err := s.Policy.Check(newPassword, vet.Email, vet.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	var ch repo.Changes
	ch.Set("password_hash", hash)
	if err := s.DB.Veterinarians.Update(ctx, vet.ID, ch); err != nil {
		return err
	}

	s.notify(ctx, email.BuildPasswordChangedEmail(vet.Email, vet.Name))
	return nil
}

// ---------------------------------------------------------------------------
// Token verification
// ---------------------------------------------------------------------------

func (s *authService) Authenticate(ctx context.Context, rawToken string) (int64, error) {
	claims, err := s.Tokens.Verify(rawToken)
	if err != nil {
		return 0, ErrUnauthorized
	}
	if _, err := s.DB.Veterinarians.Get(ctx, claims.VeterinarianID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUnauthorized
		}
		return 0, err
	}
	return claims.VeterinarianID, nil
}

// notify sends m in the background; delivery problems are only logged.
func (s *authService) notify(ctx context.Context, m email.Message) {
	if s.Mail == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	go func() {
		defer cancel()
		err := s.Mail.Send(ctx, m)
		if err == nil || errors.Is(err, email.ErrDisabled{}) {
			return
		}
		s.Logger.WarnContext(ctx, "notification email not sent", "subject", m.Subject, "error", err)
	}()
}
