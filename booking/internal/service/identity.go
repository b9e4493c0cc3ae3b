package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Astemirdum/table-booking/booking/internal/errs"
	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/Astemirdum/table-booking/booking/internal/repository"
	"github.com/Astemirdum/table-booking/pkg/auth"
	"github.com/Astemirdum/table-booking/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// IdentityProvider owns user accounts and session tokens.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, req model.SignUpRequest) (string, error)
	ConfirmAccount(ctx context.Context, email string) error
	Authenticate(ctx context.Context, email, password string) (string, time.Time, error)
}

type accountProvider struct {
	repo   repository.AccountRepository
	issuer *auth.Issuer
	cost   int
}

func NewAccountProvider(repo repository.AccountRepository, issuer *auth.Issuer, cost int) IdentityProvider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &accountProvider{
		repo:   repo,
		issuer: issuer,
		cost:   cost,
	}
}

func (p *accountProvider) CreateAccount(ctx context.Context, req model.SignUpRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	email := strings.ToLower(req.Email)
	err = p.repo.CreateAccount(ctx, model.Account{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", err
	}
	return email, nil
}

func (p *accountProvider) ConfirmAccount(ctx context.Context, email string) error {
	return p.repo.ConfirmAccount(ctx, strings.ToLower(email))
}

func (p *accountProvider) Authenticate(ctx context.Context, email, password string) (string, time.Time, error) {
	acc, err := p.repo.GetAccount(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return "", time.Time{}, errs.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, errs.ErrInvalidCredentials
	}
	if !acc.Confirmed {
		return "", time.Time{}, errs.ErrUserNotConfirmed
	}
	return p.issuer.Issue(acc.Email, acc.Name())
}

// AuthService signs users up and in against an IdentityProvider.
type AuthService struct {
	log       *zap.Logger
	provider  IdentityProvider
	validator *validate.CustomValidator
	now       func() time.Time
}

func NewAuthService(provider IdentityProvider, log *zap.Logger) *AuthService {
	return &AuthService{
		log:       log.Named("auth"),
		provider:  provider,
		validator: validate.NewCustomValidator(),
		now:       time.Now,
	}
}

// SignUp creates the account and confirms it straight away.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidInput, err.Error())
	}
	email, err := s.provider.CreateAccount(ctx, req)
	if err != nil {
		if errors.Is(err, errs.ErrUserExists) {
			return "", fmt.Errorf("%w: %s", errs.ErrUserExists, req.Email)
		}
		return "", storageErr(ctx, "create account", err)
	}
	if err = s.provider.ConfirmAccount(ctx, email); err != nil {
		return "", storageErr(ctx, "confirm account", err)
	}
	s.log.Info("account created", zap.String("email", email))
	return email, nil
}

func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (model.SignInResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return model.SignInResponse{}, fmt.Errorf("%w: %s", errs.ErrInvalidInput, err.Error())
	}
	token, expiresAt, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrInvalidCredentials), errors.Is(err, errs.ErrUserNotConfirmed):
		return model.SignInResponse{}, err
	default:
		return model.SignInResponse{}, storageErr(ctx, "authenticate", err)
	}
	return model.SignInResponse{
		AccessToken: token,
		ExpiresIn:   int(expiresAt.Sub(s.now()).Seconds()),
	}, nil
}
