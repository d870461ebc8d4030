package httpapi

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
)

// memStore backs both fake services, so scenarios can sign up, log in and
// use the token end to end.
type memStore struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	memberships map[int64]*models.Membership
	nextID      int64
	now         time.Time
	pingErr     error
	findErr     error
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		accounts:    map[string]*models.Account{},
		memberships: map[int64]*models.Membership{},
		nextID:      1,
		now:         now,
	}
}

func (s *memStore) addAccount(a *models.Account) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextID++
		a.ID = s.nextID
	}
	s.accounts[a.Email] = a
	return a
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.accounts[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (s *memStore) PingContext(ctx context.Context) error { return s.pingErr }

// fakeAccounts implements AccountService with plain-text passwords.
type fakeAccounts struct {
	store  *memStore
	issuer interface {
		Issue(string, time.Duration) (string, error)
	}
}

func (f *fakeAccounts) Signup(ctx context.Context, email, password string) (*models.Account, error) {
	creds := services.Credentials{Email: services.NormalizeEmail(email), Password: password}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	if _, err := f.store.GetByEmail(ctx, creds.Email); err == nil {
		return nil, services.ErrEmailTaken
	}
	return f.store.addAccount(&models.Account{Email: creds.Email, PasswordHash: password, IsActive: true}), nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	a, err := f.store.GetByEmail(ctx, services.NormalizeEmail(email))
	if err != nil || a.PasswordHash != password {
		return nil, common.ErrorUnauthorized
	}
	tok, err := f.issuer.Issue(a.Email, time.Hour)
	if err != nil {
		return nil, err
	}
	return &services.TokenPair{AccessToken: tok, TokenType: "bearer", ExpiresIn: time.Hour}, nil
}

// fakeMemberships implements MembershipService on top of memStore using the
// real lifecycle helpers.
type fakeMemberships struct {
	store *memStore
}

func (f *fakeMemberships) Create(ctx context.Context, accountID int64, start, end time.Time, status bool) (*models.Membership, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, a := range s.accounts {
		if a.ID == accountID {
			found = true
		}
	}
	if !found {
		return nil, services.ErrAccountNotFound
	}
	for _, m := range s.memberships {
		if m.AccountID == accountID {
			return nil, services.ErrDuplicateMembership
		}
	}
	if start.After(end) {
		return nil, services.ErrInvalidPeriod
	}
	s.nextID++
	m := &models.Membership{ID: s.nextID, AccountID: accountID, Status: status, Start: start, End: end, CreatedAt: s.now}
	s.memberships[m.ID] = m
	return m, nil
}

func (f *fakeMemberships) Update(ctx context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[id]
	if !ok {
		return nil, services.ErrMembershipNotFound
	}
	next := *m
	patch.Apply(&next)
	if !next.ValidPeriod() {
		return nil, services.ErrInvalidPeriod
	}
	*m = next
	return m, nil
}

func (f *fakeMemberships) Delete(ctx context.Context, id int64) error {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memberships[id]; !ok {
		return services.ErrMembershipNotFound
	}
	delete(s.memberships, id)
	return nil
}

func (f *fakeMemberships) byAccount(accountID int64) (*models.Membership, error) {
	for _, m := range f.store.memberships {
		if m.AccountID == accountID {
			return m, nil
		}
	}
	return nil, services.ErrMembershipNotFound
}

func (f *fakeMemberships) Renew(ctx context.Context, accountID int64) (*models.Membership, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	m, err := f.byAccount(accountID)
	if err != nil {
		return nil, err
	}
	services.ApplyRenewal(m, f.store.now)
	return m, nil
}

func (f *fakeMemberships) Get(ctx context.Context, accountID int64) (*models.Membership, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.byAccount(accountID)
}

func (f *fakeMemberships) History(ctx context.Context, accountID int64) ([]models.HistoryEvent, error) {
	m, err := f.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return services.HistoryOf(m), nil
}

func (f *fakeMemberships) List(ctx context.Context, skip, limit int, activeOnly bool) ([]*models.Membership, error) {
	if skip < 0 || limit < 0 {
		return nil, services.ErrInvalidPage
	}
	if limit == 0 {
		limit = 100
	}

	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Membership{}
	for _, m := range s.memberships {
		if activeOnly && !m.Status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip >= len(out) {
		return []*models.Membership{}, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
