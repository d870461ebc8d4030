// Package memberships stores membership records in PostgreSQL.
package memberships

import (
	"context"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/dbx"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const columns = `id, user_id, membership_status, membership_start, membership_end, created_at, updated_at`

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

func scanMembership(row scanner) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(&m.ID, &m.AccountID, &m.Status, &m.Start, &m.End, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create inserts m. A second membership for the same account fails with
// common.ErrorAlreadyExists, a missing account with common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Membership) (_ *models.Membership, err error) {
	ctx, span := r.tracer.Start(ctx, "memberships.create",
		trace.WithAttributes(attribute.Int64("account.id", m.AccountID)),
	)
	defer func() { endSpan(span, err) }()

	query :=
		`INSERT INTO memberships (user_id, membership_status, membership_start, membership_end)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, m.AccountID, m.Status, m.Start, m.End).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return m, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, spanName, where string, arg int64) (_ *models.Membership, err error) {
	ctx, span := r.tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.Int64("lookup.key", arg)),
	)
	defer func() { endSpan(span, err) }()

	query := `SELECT ` + columns + ` FROM memberships WHERE ` + where

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	return r.getOne(ctx, "memberships.get_by_id", `id = $1`, id)
}

func (r *PostgresRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Membership, error) {
	return r.getOne(ctx, "memberships.get_by_account_id", `user_id = $1`, accountID)
}

func (r *PostgresRepository) LockByID(ctx context.Context, id int64) (*models.Membership, error) {
	return r.getOne(ctx, "memberships.lock_by_id", `id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) LockByAccountID(ctx context.Context, accountID int64) (*models.Membership, error) {
	return r.getOne(ctx, "memberships.lock_by_account_id", `user_id = $1 FOR UPDATE`, accountID)
}

// Update writes status, start and end of m and refreshes its updated_at.
func (r *PostgresRepository) Update(ctx context.Context, m *models.Membership) (_ *models.Membership, err error) {
	ctx, span := r.tracer.Start(ctx, "memberships.update",
		trace.WithAttributes(
			attribute.Int64("membership.id", m.ID),
			attribute.Bool("membership.status", m.Status),
		),
	)
	defer func() { endSpan(span, err) }()

	query :=
		`UPDATE memberships
		 SET membership_status = $2, membership_start = $3, membership_end = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query, m.ID, m.Status, m.Start, m.End).Scan(&m.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return m, nil
}

// Delete removes the membership; deleting a missing one is
// common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := r.tracer.Start(ctx, "memberships.delete",
		trace.WithAttributes(attribute.Int64("membership.id", id)),
	)
	defer func() { endSpan(span, err) }()

	res, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Classify(err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// List returns memberships ordered by id.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int, activeOnly bool) (_ []*models.Membership, err error) {
	ctx, span := r.tracer.Start(ctx, "memberships.list",
		trace.WithAttributes(
			attribute.Int("list.offset", offset),
			attribute.Int("list.limit", limit),
			attribute.Bool("list.active_only", activeOnly),
		),
	)
	defer func() { endSpan(span, err) }()

	query := `SELECT ` + columns + ` FROM memberships`
	if activeOnly {
		query += ` WHERE membership_status`
	}
	query += ` ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	defer rows.Close()

	result := []*models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, dbx.Classify(err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	span.SetAttributes(attribute.Int("list.count", len(result)))
	return result, nil
}
