package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/dbx"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Paging bounds list requests. A zero limit means DefaultLimit; limits above
// MaxLimit are clamped.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

func (p Paging) normalize(skip, limit int) (int, int, error) {
	if skip < 0 || limit < 0 {
		return 0, 0, ErrInvalidPage
	}
	if limit == 0 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return skip, limit, nil
}

// MembershipService owns the membership lifecycle: admin CRUD, member
// renewal and the history projection.
type MembershipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	paging      Paging
	now         func() time.Time
	meters      metric.MeterProvider

	renewals metric.Int64Counter
	changes  metric.Int64Counter
}

type MembershipOption func(*MembershipService)

// WithNow replaces the clock used by Renew.
func WithNow(now func() time.Time) MembershipOption {
	return func(s *MembershipService) { s.now = now }
}

// WithMembershipMetrics records the renewal and change counters on mp
// instead of the global provider.
func WithMembershipMetrics(mp metric.MeterProvider) MembershipOption {
	return func(s *MembershipService) { s.meters = mp }
}

// WithPaging sets list bounds.
func WithPaging(p Paging) MembershipOption {
	return func(s *MembershipService) { s.paging = p }
}

func NewMembershipService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, opts ...MembershipOption) *MembershipService {
	s := &MembershipService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "memberships"),
		paging:      Paging{DefaultLimit: 100, MaxLimit: 500},
		now:         time.Now,
		meters:      otel.GetMeterProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.renewals = newCounter(s.meters, s.logger, "fitkeeper.membership.renewals", "Completed membership renewals")
	s.changes = newCounter(s.meters, s.logger, "fitkeeper.membership.changes", "Admin membership writes by operation")

	return s
}

func (s *MembershipService) count(ctx context.Context, c metric.Int64Counter, op string) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// Create adds the membership of accountID.
func (s *MembershipService) Create(ctx context.Context, accountID int64, start, end time.Time, status bool) (*models.Membership, error) {
	m := &models.Membership{AccountID: accountID, Status: status, Start: start, End: end}
	if !m.ValidPeriod() {
		return nil, ErrInvalidPeriod
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).GetByID(ctx, accountID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		repo := s.repomanager.Memberships(tx)
		_, err := repo.GetByAccountID(ctx, accountID)
		switch {
		case err == nil:
			return ErrDuplicateMembership
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		created, err := repo.Create(ctx, m)
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return ErrDuplicateMembership
		case errors.Is(err, common.ErrorNotFound):
			return ErrAccountNotFound
		case err != nil:
			return err
		}
		m = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, s.changes, "create")
	s.logger.Info(ctx, "membership created", "membership_id", m.ID, "account_id", accountID)
	return m, nil
}

// Update applies patch to membership id. An empty patch returns the record
// as stored.
func (s *MembershipService) Update(ctx context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error) {
	if patch.Empty() {
		m, err := s.repomanager.Memberships(s.db).GetByID(ctx, id)
		if err != nil {
			return nil, notFoundAs(err, ErrMembershipNotFound)
		}
		return m, nil
	}

	var updated *models.Membership
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memberships(tx)

		m, err := repo.LockByID(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrMembershipNotFound)
		}

		patch.Apply(m)
		if !m.ValidPeriod() {
			return ErrInvalidPeriod
		}

		updated, err = repo.Update(ctx, m)
		return notFoundAs(err, ErrMembershipNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, s.changes, "update")
	s.logger.Info(ctx, "membership updated", "membership_id", id)
	return updated, nil
}

// Delete removes membership id. Deleting a missing membership fails every
// time.
func (s *MembershipService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Memberships(s.db).Delete(ctx, id); err != nil {
		return notFoundAs(err, ErrMembershipNotFound)
	}

	s.count(ctx, s.changes, "delete")
	s.logger.Info(ctx, "membership deleted", "membership_id", id)
	return nil
}

// Renew extends the membership of accountID by RenewalPeriod and marks it
// active. The row is locked for the duration, so concurrent renewals apply
// one after the other.
func (s *MembershipService) Renew(ctx context.Context, accountID int64) (*models.Membership, error) {
	var renewed *models.Membership
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Memberships(tx)

		m, err := repo.LockByAccountID(ctx, accountID)
		if err != nil {
			return notFoundAs(err, ErrMembershipNotFound)
		}

		ApplyRenewal(m, s.now())

		renewed, err = repo.Update(ctx, m)
		return notFoundAs(err, ErrMembershipNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, s.renewals, "renew")
	s.logger.Info(ctx, "membership renewed", "account_id", accountID, "membership_end", renewed.End)
	return renewed, nil
}

// Get returns the membership of accountID.
func (s *MembershipService) Get(ctx context.Context, accountID int64) (*models.Membership, error) {
	m, err := s.repomanager.Memberships(s.db).GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, notFoundAs(err, ErrMembershipNotFound)
	}
	return m, nil
}

// History returns the start and end events of the membership of accountID.
func (s *MembershipService) History(ctx context.Context, accountID int64) ([]models.HistoryEvent, error) {
	m, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return HistoryOf(m), nil
}

// List pages through memberships ordered by id, optionally only active ones.
func (s *MembershipService) List(ctx context.Context, skip, limit int, activeOnly bool) ([]*models.Membership, error) {
	skip, limit, err := s.paging.normalize(skip, limit)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Memberships(s.db).List(ctx, skip, limit, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("error listing memberships: %w", err)
	}
	return list, nil
}

// notFoundAs swaps a generic not-found for the domain error.
func notFoundAs(err, target error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return target
	}
	return err
}
