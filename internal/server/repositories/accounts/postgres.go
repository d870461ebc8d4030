// Package accounts stores user accounts in PostgreSQL.
package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fitkeeper/internal/dbx"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const columns = `id, email, hashed_password, is_active, is_admin, created_at, updated_at`

type PostgresRepository struct {
	db     dbx.DBTX
	tracer trace.Tracer
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		tracer: otel.Tracer("fitkeeper/repositories"),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (_ *models.Account, err error) {
	ctx, span := r.tracer.Start(ctx, "accounts.create",
		trace.WithAttributes(attribute.Bool("account.admin", account.IsAdmin)),
	)
	defer func() { endSpan(span, err) }()

	query :=
		`INSERT INTO accounts (email, hashed_password, is_active, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		account.Email, account.PasswordHash, account.IsActive, account.IsAdmin).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (_ *models.Account, err error) {
	ctx, span := r.tracer.Start(ctx, "accounts.get_by_id",
		trace.WithAttributes(attribute.Int64("account.id", id)),
	)
	defer func() { endSpan(span, err) }()

	query := `SELECT ` + columns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (_ *models.Account, err error) {
	ctx, span := r.tracer.Start(ctx, "accounts.get_by_email")
	defer func() { endSpan(span, err) }()

	query := `SELECT ` + columns + ` FROM accounts WHERE email = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return a, nil
}

func (r *PostgresRepository) SetAdmin(ctx context.Context, id int64, admin bool) (*models.Account, error) {
	return r.setFlag(ctx, "is_admin", id, admin)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) (*models.Account, error) {
	return r.setFlag(ctx, "is_active", id, active)
}

// setFlag updates one of the boolean columns. column is never user input.
func (r *PostgresRepository) setFlag(ctx context.Context, column string, id int64, value bool) (_ *models.Account, err error) {
	ctx, span := r.tracer.Start(ctx, "accounts.set_"+column,
		trace.WithAttributes(
			attribute.Int64("account.id", id),
			attribute.Bool(column, value),
		),
	)
	defer func() { endSpan(span, err) }()

	query := fmt.Sprintf(
		`UPDATE accounts SET %s = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING %s`, column, columns)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id, value))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return a, nil
}
