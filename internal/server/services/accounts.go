// Package services contains server-side business logic: account signup and
// login, and the membership lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenIssuer is satisfied by *auth.TokenService.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// Credentials is an email/password pair as submitted at signup.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the shape of the credentials. It returns
// validation.Errors keyed by json field name.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 128)),
	)
}

// NormalizeEmail trims and lower-cases an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountService handles signup, login and the operator paths that change
// account flags.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	tokenTTL    time.Duration
	logger      logging.Logger

	// dummyDigest is verified against when the email is unknown, so a
	// failed login costs the same either way.
	dummyDigest string

	meters metric.MeterProvider
	logins metric.Int64Counter
}

type AccountOption func(*AccountService)

// WithAccountMetrics records the login counter on mp instead of the global
// provider.
func WithAccountMetrics(mp metric.MeterProvider) AccountOption {
	return func(s *AccountService) { s.meters = mp }
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer, tokenTTL time.Duration, logger logging.Logger, opts ...AccountOption) (*AccountService, error) {
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy digest: %w", err)
	}
	dummy, err := hasher.Hash(seed)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy digest: %w", err)
	}

	s := &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		logger:      logger.With("module", "accounts"),
		dummyDigest: dummy,
		meters:      otel.GetMeterProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.logins = newCounter(s.meters, s.logger, "fitkeeper.auth.logins", "Login attempts by outcome")

	return s, nil
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorValidation, err)
}

// Signup registers an active, non-admin account.
func (s *AccountService) Signup(ctx context.Context, email, password string) (*models.Account, error) {
	creds := Credentials{Email: NormalizeEmail(email), Password: password}
	if err := creds.Validate(); err != nil {
		return nil, validationError(err)
	}

	digest, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		Email:        creds.Email,
		PasswordHash: digest,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return account, nil
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password are both common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = NormalizeEmail(email)

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error loading account: %w", err)
		}
		s.hasher.Verify(password, s.dummyDigest)
		s.recordLogin(ctx, "unknown_email")
		return nil, common.ErrorUnauthorized
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.recordLogin(ctx, "bad_password")
		return nil, common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(account.Email, s.tokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.recordLogin(ctx, "success")
	return &TokenPair{AccessToken: token, TokenType: common.TokenTypeBearer, ExpiresIn: s.tokenTTL}, nil
}

func (s *AccountService) recordLogin(ctx context.Context, outcome string) {
	s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome != "success" {
		s.logger.Debug(ctx, "login rejected", "outcome", outcome)
	}
}

// BootstrapAdmin creates an admin account, or promotes an existing one. The
// password is only used when the account is created.
func (s *AccountService) BootstrapAdmin(ctx context.Context, email, password string) (*models.Account, error) {
	email = NormalizeEmail(email)
	repo := s.repomanager.Accounts(s.db)

	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return existing, nil
		}
		promoted, err := repo.SetAdmin(ctx, existing.ID, true)
		if err != nil {
			return nil, fmt.Errorf("error promoting account: %w", err)
		}
		s.logger.Info(ctx, "account promoted to admin", "account_id", promoted.ID)
		return promoted, nil
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, validationError(err)
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account, err := repo.Create(ctx, &models.Account{Email: email, PasswordHash: digest, IsActive: true, IsAdmin: true})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "admin account created", "account_id", account.ID)
	return account, nil
}

// SetActive toggles the active flag of the account with the given email.
func (s *AccountService) SetActive(ctx context.Context, email string, active bool) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, notFoundAs(err, ErrAccountNotFound)
	}

	updated, err := repo.SetActive(ctx, account.ID, active)
	if err != nil {
		return nil, notFoundAs(err, ErrAccountNotFound)
	}

	s.logger.Info(ctx, "account active flag changed", "account_id", updated.ID, "active", active)
	return updated, nil
}
