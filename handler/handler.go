package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/lordvidex/x/resp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/kodekulture/tokenlink/handler/token"
	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/service/hasher"
)

// Service is the token lifecycle the handler exposes over HTTP.
type Service interface {
	IssueToken(ctx context.Context, req login.IssueRequest) error
	RedeemToken(ctx context.Context, token string) (login.Identity, error)
}

// Config holds the transport settings of the handler.
type Config struct {
	// IssuerKeyHash is the bcrypt hash of the key trusted identity sources
	// present on the issue endpoint. Empty leaves the endpoint to the network boundary.
	IssuerKeyHash string
	// CORSOrigin is echoed in Access-Control-Allow-Origin on the validate endpoint.
	CORSOrigin string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
	// SessionTTL is the lifetime of the session cookie.
	SessionTTL time.Duration
}

type Handler struct {
	s        *http.Server
	router   chi.Router
	srv      Service
	token    token.Handler // nil disables sessions
	validate *validator.Validate
	hasher   hasher.Bcrypt
	cfg      Config
}

func New(srv Service, tokenHandler token.Handler, cfg Config) *Handler {
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	h := &Handler{
		router:   chi.NewRouter(),
		srv:      srv,
		token:    tokenHandler,
		validate: validator.New(),
		cfg:      cfg,
	}
	h.setup()
	return h
}

func (h *Handler) Start(port string) error {
	h.s = &http.Server{
		Addr:              ":" + port,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h.s.ListenAndServe()
}

func (h *Handler) Stop(ctx context.Context) error {
	if h.s == nil {
		return nil
	}
	return h.s.Shutdown(ctx)
}

// ServeHTTP lets the handler be mounted or tested without a listener.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) setup() {
	r := h.router
	r.Use(middleware.RequestID, middleware.Recoverer)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", h.health)
		r.Handle("/metrics", promhttp.Handler())

		r.Group(func(r chi.Router) {
			r.Use(h.corsMiddleware)
			r.Get("/validate-token", h.validateToken)
			r.Options("/validate-token", h.preflight)
		})
	})

	// Trusted identity source
	r.Group(func(r chi.Router) {
		r.Use(h.issuerMiddleware)
		r.Post("/store-token", h.storeToken)
	})

	// Browser session
	if h.token != nil {
		r.Group(func(r chi.Router) {
			r.Use(h.sessionMiddleware)
			r.Get("/me", h.me)
		})
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

const (
	msgInvalidRequest = "Invalid request"
	msgMissingFields  = "Missing required fields"
	msgConflict       = "Token already exists"
	msgCooldown       = "Please wait before requesting another login link"

	maxIssueBody = 1 << 16
)

func (h *Handler) storeToken(w http.ResponseWriter, r *http.Request) {
	var payload login.IssueRequest
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, maxIssueBody)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		issueCounter.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidRequest})
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		issueCounter.WithLabelValues("missing_field").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingFields})
		return
	}

	err := h.srv.IssueToken(r.Context(), payload)
	switch {
	case err == nil:
		issueCounter.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, login.ErrMissingField):
		issueCounter.WithLabelValues("missing_field").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingFields})
	case errors.Is(err, login.ErrConflict):
		issueCounter.WithLabelValues("conflict").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgConflict})
	case errors.Is(err, login.ErrOnCooldown):
		issueCounter.WithLabelValues("cooldown").Inc()
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: msgCooldown})
	default:
		// the issue endpoint is trusted, store errors are passed through
		issueCounter.WithLabelValues("error").Inc()
		log.Err(err).Caller().Msg("failed to issue token")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// Caller-facing validate messages. A missing row and a dead row share one
// message so probing clients learn nothing about the token's state.
const (
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid or expired token"
	msgServerError  = "Server error"
)

type validateResponse struct {
	Error        string `json:"error,omitempty"`
	PlayerUUID   string `json:"player_uuid,omitempty"`
	PlayerName   string `json:"player_name,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	Valid        bool   `json:"valid"`
}

func (h *Handler) validateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := h.srv.RedeemToken(ctx, r.URL.Query().Get("token"))
	switch {
	case err == nil:
	case errors.Is(err, login.ErrMissingToken):
		redeemCounter.WithLabelValues("missing").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Error: msgNoToken})
		return
	case errors.Is(err, login.ErrInvalidToken), errors.Is(err, login.ErrExpiredOrUsed):
		redeemCounter.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, validateResponse{Error: msgInvalidToken})
		return
	default:
		redeemCounter.WithLabelValues("error").Inc()
		log.Err(err).Caller().Msg("failed to redeem token")
		writeJSON(w, http.StatusInternalServerError, validateResponse{Error: msgServerError})
		return
	}

	redeemCounter.WithLabelValues("ok").Inc()
	result := validateResponse{
		Valid:      true,
		PlayerUUID: id.PlayerUUID,
		PlayerName: id.PlayerName,
	}
	if h.token != nil {
		// the login token is already spent, a session failure must not hide that the redemption succeeded
		session, err := h.token.Generate(ctx, id)
		if err != nil {
			log.Err(err).Caller().Str("player_uuid", id.PlayerUUID).Msg("failed to create session")
		} else {
			ck := h.newSessionCookie(session)
			http.SetCookie(w, &ck)
			result.SessionToken = string(session)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := Identity(r.Context())
	if id == nil {
		resp.Error(w, ErrUnauthenticated)
		return
	}
	resp.JSON(w, id)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Caller().Msg("failed to write response")
	}
}
