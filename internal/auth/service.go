package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/apperr"
	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // bcrypt refuses longer inputs

	msgInvalidCredentials = "Invalid email or password"
	msgNoToken            = "Not authorized, no token"
	msgTokenFailed        = "Not authorized, token failed"
	msgTokenExpired       = "Not authorized, token expired"
	msgNotAdmin           = "Not authorized as an admin"
)

// AccountStore is the persistence contract the service needs.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
	Insert(ctx context.Context, a account.Account) (account.Account, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// Session is the result of a successful register or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  Identity  `json:"user"`
}

type Service struct {
	accounts  AccountStore
	tokens    *Manager
	hasher    PasswordHasher
	validate  *validator.Validate
	dummyHash string
}

func NewService(accounts AccountStore, tokens *Manager, hasher PasswordHasher) *Service {
	s := &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		validate: validator.New(),
	}

	// Compared against on unknown emails so login costs one bcrypt either way.
	h, err := hasher.Hash("storefront-timing-equalizer")
	if err != nil {
		slog.Default().Error("dummy password hash failed; unknown-email logins will answer faster", "err", err)
		return s
	}
	s.dummyHash = h
	return s
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validateRegistration(in); err != nil {
		return Session{}, err
	}

	_, err := s.accounts.FindByEmail(ctx, in.Email)
	if err == nil {
		return Session{}, apperr.Validation("User already exists")
	}
	if !errors.Is(err, account.ErrNotFound) {
		return Session{}, apperr.Internal("Could not create user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, apperr.Internal("Could not create user", err)
	}

	now := time.Now().UTC()
	created, err := s.accounts.Insert(ctx, account.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		// no check on who may ask for admin; see DESIGN.md open questions
		IsAdmin:   in.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return Session{}, apperr.Conflict("User already exists", err)
		}
		return Session{}, apperr.Internal("Could not create user", err)
	}

	if created.IsAdmin {
		slog.Default().WarnContext(ctx, "privileged account self-registered", "account_id", created.ID, "email", created.Email)
	}

	return s.issue(created)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	found, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			return Session{}, apperr.Internal("Could not log in", err)
		}
		if s.dummyHash != "" {
			_ = s.hasher.Check(s.dummyHash, password)
		}
		return Session{}, apperr.Authentication(msgInvalidCredentials)
	}

	if err := s.hasher.Check(found.PasswordHash, password); err != nil {
		return Session{}, apperr.Authentication(msgInvalidCredentials)
	}

	return s.issue(found)
}

// Validate checks signature and expiry and returns the identity embedded at
// issuance. Storage is not consulted.
func (s *Service) Validate(token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, apperr.Authentication(msgNoToken)
	}

	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Identity{}, apperr.Authentication(msgTokenExpired)
		}
		return Identity{}, apperr.Authentication(msgTokenFailed)
	}
	return claims.Identity(), nil
}

func (s *Service) RequireAuthenticated(token string) (Identity, error) {
	return s.Validate(token)
}

func (s *Service) RequirePrivileged(token string) (Identity, error) {
	id, err := s.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	if !id.IsAdmin {
		return Identity{}, apperr.Authorization(msgNotAdmin)
	}
	return id, nil
}

// Profile re-reads the account behind a validated identity.
func (s *Service) Profile(ctx context.Context, id Identity) (account.Profile, error) {
	a, err := s.accounts.GetByID(ctx, id.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Profile{}, apperr.NotFound("User")
		}
		return account.Profile{}, apperr.Internal("Could not load profile", err)
	}
	return a.Profile(), nil
}

func (s *Service) issue(a account.Account) (Session, error) {
	id := Identity{
		AccountID: a.ID,
		Email:     a.Email,
		Name:      a.Name,
		IsAdmin:   a.IsAdmin,
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(id)
	if err != nil {
		return Session{}, apperr.Internal("Could not generate access token", err)
	}

	return Session{Token: token, ExpiresAt: expiresAt, Identity: id}, nil
}

func (s *Service) validateRegistration(in RegisterInput) error {
	if in.Name == "" {
		return apperr.Validation("Name is required")
	}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return apperr.Validation("A valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return apperr.Validation("Password must be at least 6 characters")
	}
	if len(in.Password) > maxPasswordBytes {
		return apperr.Validation("Password must be at most 72 bytes")
	}
	return nil
}
