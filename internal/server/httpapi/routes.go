package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	authBasePath    = "/auth"
	adminBasePath   = "/admin"
	membersBasePath = "/members"
)

const paramID = "id"

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Accounts           AccountService
	Memberships        MembershipService
	Gate               Authenticator
	DB                 Pinger
	Logger             logging.Logger
	LoginRatePerMinute int
	RequestTimeout     time.Duration
}

// NewRouter builds the public HTTP API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger.With("module", "http")
	h := &handlers{
		accounts:    d.Accounts,
		memberships: d.Memberships,
		db:          d.DB,
		logger:      logger,
	}
	mk := func(fn appHandler) http.HandlerFunc { return makeHandler(logger, fn) }

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rate := d.LoginRatePerMinute
	if rate <= 0 {
		rate = 10
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/", mk(h.root))
	r.Get("/healthz", mk(h.healthz))

	authed := authenticate(d.Gate, logger)

	r.Route(authBasePath, func(r chi.Router) {
		r.Post("/signup", mk(h.signup))
		r.With(rateLimit(newIPLimiter(rate), logger)).Post("/login", mk(h.login))
		r.With(authed).Get("/me", mk(h.me))
	})

	r.Route(adminBasePath, func(r chi.Router) {
		r.Use(authed)
		r.Use(requireAdmin(logger))

		r.Route(membersBasePath, func(r chi.Router) {
			r.Get("/", mk(h.listMemberships(false)))
			r.Post("/", mk(h.createMembership))
			r.Put("/{"+paramID+"}", mk(h.updateMembership))
			r.Delete("/{"+paramID+"}", mk(h.deleteMembership))
		})
		r.Get("/memberships", mk(h.listMemberships(true)))
	})

	r.Route(membersBasePath, func(r chi.Router) {
		r.Use(authed)
		r.Use(requireActive(logger))

		r.Get("/", mk(h.ownMembership))
		r.Post("/renew", mk(h.renew))
		r.Get("/history", mk(h.history))
	})

	return r
}
