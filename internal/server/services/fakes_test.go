package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/dbx"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/memberships"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeAccounts is an in-memory accounts.Repository.
type fakeAccounts struct {
	byID   map[int64]*models.Account
	nextID int64

	createErr error
	getErr    error
}

func newFakeAccounts(list ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[int64]*models.Account{}, nextID: 100}
	for _, a := range list {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	a.ID = f.nextID
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) SetAdmin(ctx context.Context, id int64, admin bool) (*models.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.IsAdmin = admin
	return a, nil
}

func (f *fakeAccounts) SetActive(ctx context.Context, id int64, active bool) (*models.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.IsActive = active
	return a, nil
}

// fakeMemberships is an in-memory memberships.Repository. Records are copied
// in and out so callers cannot mutate stored state without Update.
type fakeMemberships struct {
	byID   map[int64]models.Membership
	nextID int64

	createErr error
	updateErr error
	listErr   error

	locks      int
	listArgs   [3]any
	updateSeen []models.Membership
}

func newFakeMemberships(list ...models.Membership) *fakeMemberships {
	f := &fakeMemberships{byID: map[int64]models.Membership{}, nextID: 10}
	for _, m := range list {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMemberships) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	m.ID = f.nextID
	f.byID[m.ID] = *m
	return m, nil
}

func (f *fakeMemberships) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &m, nil
}

func (f *fakeMemberships) GetByAccountID(ctx context.Context, accountID int64) (*models.Membership, error) {
	for _, m := range f.byID {
		if m.AccountID == accountID {
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMemberships) LockByID(ctx context.Context, id int64) (*models.Membership, error) {
	f.locks++
	return f.GetByID(ctx, id)
}

func (f *fakeMemberships) LockByAccountID(ctx context.Context, accountID int64) (*models.Membership, error) {
	f.locks++
	return f.GetByAccountID(ctx, accountID)
}

func (f *fakeMemberships) Update(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.byID[m.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.byID[m.ID] = *m
	f.updateSeen = append(f.updateSeen, *m)
	return m, nil
}

func (f *fakeMemberships) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeMemberships) List(ctx context.Context, offset, limit int, activeOnly bool) ([]*models.Membership, error) {
	f.listArgs = [3]any{offset, limit, activeOnly}
	if f.listErr != nil {
		return nil, f.listErr
	}

	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []*models.Membership{}
	for _, id := range ids {
		m := f.byID[id]
		if activeOnly && !m.Status {
			continue
		}
		out = append(out, &m)
	}
	if offset >= len(out) {
		return []*models.Membership{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeRepoManager struct {
	a *fakeAccounts
	m *fakeMemberships
}

func (rm *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (rm *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository       { return rm.a }
func (rm *fakeRepoManager) Memberships(db dbx.DBTX) memberships.Repository { return rm.m }
