package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// AccountService is the subset of *services.AccountService used over HTTP.
type AccountService interface {
	Signup(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
}

// MembershipService is the subset of *services.MembershipService used over
// HTTP.
type MembershipService interface {
	Create(ctx context.Context, accountID int64, start, end time.Time, status bool) (*models.Membership, error)
	Update(ctx context.Context, id int64, patch models.MembershipPatch) (*models.Membership, error)
	Delete(ctx context.Context, id int64) error
	Renew(ctx context.Context, accountID int64) (*models.Membership, error)
	Get(ctx context.Context, accountID int64) (*models.Membership, error)
	History(ctx context.Context, accountID int64) ([]models.HistoryEvent, error)
	List(ctx context.Context, skip, limit int, activeOnly bool) ([]*models.Membership, error)
}

// Authenticator is satisfied by *auth.Gate.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type handlers struct {
	accounts    AccountService
	memberships MembershipService
	db          Pinger
	logger      logging.Logger
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, messageResponse{Message: "Welcome to Fitness Center API"})
	return nil
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) error {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			return newHTTPError(http.StatusServiceUnavailable, "Database unavailable", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

// --- auth ---

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	account, err := h.accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, account)
	return nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) error {
	req, err := parseLogin(r)
	if err != nil {
		return err
	}

	pair, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return newHTTPError(http.StatusUnauthorized, msgBadLogin, err)
		}
		return err
	}

	respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		ExpiresIn:   int64(pair.ExpiresIn / time.Second),
	})
	return nil
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) error {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		return common.ErrorUnauthorized
	}
	respondJSON(w, http.StatusOK, account)
	return nil
}

// --- admin ---

func (h *handlers) createMembership(w http.ResponseWriter, r *http.Request) error {
	var req createMembershipRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationErr(err)
	}

	m, err := h.memberships.Create(r.Context(), *req.UserID, *req.Start, *req.End, req.status())
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, m)
	return nil
}

func (h *handlers) updateMembership(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(chi.URLParam(r, paramID))
	if err != nil {
		return err
	}

	var patch patchRequest
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}

	m, err := h.memberships.Update(r.Context(), id, patch)
	if err != nil {
		return memberNotFound(err)
	}

	respondJSON(w, http.StatusOK, m)
	return nil
}

func (h *handlers) deleteMembership(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(chi.URLParam(r, paramID))
	if err != nil {
		return err
	}

	if err := h.memberships.Delete(r.Context(), id); err != nil {
		return memberNotFound(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *handlers) listMemberships(activeOnly bool) appHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			return err
		}
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			return err
		}

		list, err := h.memberships.List(r.Context(), skip, limit, activeOnly)
		if err != nil {
			return err
		}

		respondJSON(w, http.StatusOK, list)
		return nil
	}
}

// --- member ---

func (h *handlers) currentAccount(r *http.Request) (*models.Account, error) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return account, nil
}

func (h *handlers) ownMembership(w http.ResponseWriter, r *http.Request) error {
	account, err := h.currentAccount(r)
	if err != nil {
		return err
	}

	m, err := h.memberships.Get(r.Context(), account.ID)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, m)
	return nil
}

func (h *handlers) renew(w http.ResponseWriter, r *http.Request) error {
	account, err := h.currentAccount(r)
	if err != nil {
		return err
	}

	m, err := h.memberships.Renew(r.Context(), account.ID)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, renewResponse{
		Message:    "Membership renewed successfully",
		NewEndDate: m.End,
	})
	return nil
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) error {
	account, err := h.currentAccount(r)
	if err != nil {
		return err
	}

	events, err := h.memberships.History(r.Context(), account.ID)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, events)
	return nil
}
