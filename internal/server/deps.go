package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fitkeeper/internal/server/config"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
)

const dbOpenTimeout = 10 * time.Second

// openDB is a seam for tests.
var openDB = repomanager.Open

// OpenStorage connects to PostgreSQL and applies pending migrations.
func OpenStorage(ctx context.Context, cfg *config.Config, rm repomanager.RepositoryManager, logger logging.Logger) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOpenTimeout)
	defer cancel()

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	logger.Info(ctx, "database ready")
	return db, nil
}

// NewTokenService builds the HS256 token service from config.
func NewTokenService(cfg *config.Config) *auth.TokenService {
	return auth.NewTokenService([]byte(cfg.SecretKey), auth.WithIssuer(cfg.TokenIssuer))
}

// NewAccountService wires the account service with argon2id hashing and
// tokens valid for cfg.AccessTokenValidityDuration.
func NewAccountService(cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager, tokens services.TokenIssuer, logger logging.Logger) (*services.AccountService, error) {
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)
	return services.NewAccountService(db, rm, hasher, tokens, cfg.AccessTokenValidityDuration, logger)
}
