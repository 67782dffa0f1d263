package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

type Catalog interface {
	ListCars(ctx context.Context) ([]domain.CarListing, error)
}

type Dealerships interface {
	FetchDealers(ctx context.Context, state string) ([]domain.Dealer, error)
	FetchDealer(ctx context.Context, id int64) (domain.Dealer, error)
	FetchReviews(ctx context.Context, dealerID int64) ([]domain.Review, error)
	SubmitReview(ctx context.Context, sess domain.Session, in domain.NewReview) (any, error)
}

type Auth interface {
	Register(ctx context.Context, in domain.RegisterInput) (domain.Session, error)
	Login(ctx context.Context, in domain.LoginInput) (domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (domain.Session, error)
	SessionTTL() time.Duration
}

type Handlers struct {
	Catalog Catalog
	Dealers Dealerships
	Auth    Auth

	// SecureCookies marks the session cookie Secure (HTTPS deployments).
	SecureCookies bool
	// Checks back /readyz; each must return nil for the service to be ready.
	Checks map[string]func(context.Context) error
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)

	s.mux.Route("/djangoapp", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)
		r.Post("/register", h.register)

		r.Get("/get_cars", h.getCars)
		r.Get("/get_dealers", h.getDealers)
		r.Get("/get_dealers/{state}", h.getDealers)
		r.Get("/dealer/{id}", h.getDealer)
		r.Get("/reviews/dealer/{id}", h.getReviews)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.Auth))
			r.Post("/add_review", h.addReview)
			r.Post("/add_review/{id}", h.addReview)
		})
	})
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.Checks {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, envelope{"status": http.StatusServiceUnavailable, "message": "not ready", "errors": failed})
		return
	}
	writeStatus(w, http.StatusOK, "ready")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ---- catalog ----

func (h *Handlers) getCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Catalog.ListCars(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, envelope{"status": http.StatusOK, "CarModels": cars})
}

// ---- dealers & reviews ----

func (h *Handlers) getDealers(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(chi.URLParam(r, "state"))
	dealers, err := h.Dealers.FetchDealers(r.Context(), state)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, envelope{"status": http.StatusOK, "dealers": dealers})
}

func (h *Handlers) getDealer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeStatus(w, http.StatusBadRequest, "dealer id must be a positive integer")
		return
	}
	d, err := h.Dealers.FetchDealer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, envelope{"status": http.StatusOK, "dealer": d})
}

func (h *Handlers) getReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeStatus(w, http.StatusBadRequest, "dealer id must be a positive integer")
		return
	}
	reviews, err := h.Dealers.FetchReviews(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, envelope{"status": http.StatusOK, "reviews": reviews})
}

type addReviewRequest struct {
	Dealership   flexInt `json:"dealership"`
	Review       string  `json:"review"`
	Purchase     bool    `json:"purchase"`
	PurchaseDate string  `json:"purchase_date"`
	CarMake      string  `json:"car_make"`
	CarModel     string  `json:"car_model"`
	CarYear      flexInt `json:"car_year"`
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var req addReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := domain.NewReview{
		Dealership:   int64(req.Dealership),
		Review:       req.Review,
		Purchase:     req.Purchase,
		PurchaseDate: req.PurchaseDate,
		CarMake:      req.CarMake,
		CarModel:     req.CarModel,
		CarYear:      int(req.CarYear),
	}
	if chi.URLParam(r, "id") != "" {
		id, ok := pathID(r)
		if !ok {
			writeStatus(w, http.StatusBadRequest, "dealer id must be a positive integer")
			return
		}
		in.Dealership = id
	}

	out, err := h.Dealers.SubmitReview(r.Context(), sess, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"status": http.StatusCreated, "message": "Review posted", "review": out})
}

// ---- auth ----

func (h *Handlers) setSessionCookie(w http.ResponseWriter, s domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.Token,
		Path:     "/",
		MaxAge:   int(h.Auth.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusUnauthorized {
			log.Info().Str("user", in.UserName).Msg("login rejected")
			writeJSON(w, status, envelope{"status": status, "userName": in.UserName, "error": "Invalid username or password"})
			return
		}
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, s)
	writeJSON(w, http.StatusOK, envelope{"userName": s.UserName, "status": "Authenticated"})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := h.Auth.Logout(r.Context(), c.Value); err != nil {
			// the cookie is cleared regardless; the session expires on its own
			log.Warn().Err(err).Msg("session delete failed")
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, envelope{"userName": ""})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		if status := statusFor(err); status == http.StatusConflict {
			writeJSON(w, status, envelope{"status": status, "userName": strings.TrimSpace(in.UserName), "error": "Already Registered"})
			return
		}
		writeError(w, err)
		return
	}
	h.setSessionCookie(w, s)
	writeJSON(w, http.StatusOK, envelope{"userName": s.UserName, "status": "Authenticated"})
}
