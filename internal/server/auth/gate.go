package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
)

// TokenValidator is satisfied by *TokenService.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// AccountFinder loads the account a token subject refers to.
type AccountFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Role check failures. Both wrap common.ErrorForbidden.
var (
	ErrNotEnoughPrivileges = fmt.Errorf("%w: not enough privileges", common.ErrorForbidden)
	ErrInactiveUser        = fmt.Errorf("%w: inactive user", common.ErrorForbidden)
)

// Gate turns a bearer token into the account it belongs to.
type Gate struct {
	tokens   TokenValidator
	accounts AccountFinder
	logger   logging.Logger
}

func NewGate(tokens TokenValidator, accounts AccountFinder, logger logging.Logger) *Gate {
	return &Gate{
		tokens:   tokens,
		accounts: accounts,
		logger:   logger.With("module", "gate"),
	}
}

// Authenticate returns the active account the token was issued to. Every
// token or account failure is reported as common.ErrorUnauthorized and the
// cause is only logged. Storage errors are returned wrapped.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	email, err := g.tokens.Validate(token)
	if err != nil {
		g.logger.Warn(ctx, "token rejected", "error", err)
		return nil, common.ErrorUnauthorized
	}

	account, err := g.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			g.logger.Warn(ctx, "token subject not found", "email", email)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	if !account.IsActive {
		g.logger.Warn(ctx, "token subject is inactive", "account_id", account.ID)
		return nil, common.ErrorUnauthorized
	}

	return account, nil
}

// RequireAdmin passes admins through.
func RequireAdmin(account *models.Account) (*models.Account, error) {
	if account == nil || !account.IsAdmin {
		return nil, ErrNotEnoughPrivileges
	}
	return account, nil
}

// RequireActive passes active accounts through.
func RequireActive(account *models.Account) (*models.Account, error) {
	if account == nil || !account.IsActive {
		return nil, ErrInactiveUser
	}
	return account, nil
}
