// Package debugserver is an off-by-default HTTP introspection server a
// host program can mount to inspect a grammar's recognition stats and
// most recent match tree while developing it. grammar.Grammar and
// recognize have no dependency on this package; it is purely a debug
// aid built on top of them.
package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/grouper/debugserver/history"
	"github.com/dekarrin/grouper/output"
	"github.com/dekarrin/grouper/recognize"
)

// Server answers HTTP introspection requests for a set of registered
// grammars. Create one with New, register grammars via its Registry,
// call RecordParse after each parse you want reflected in the
// introspection endpoints, then ListenAndServe.
type Server struct {
	cfg Config

	Registry *Registry

	history    history.Store
	signKey    []byte
	adminHash  []byte
	httpServer *http.Server
	router     chi.Router
}

// New builds a Server from cfg (after FillDefaults/Validate) and reg. If
// reg is nil, a fresh empty Registry is created.
func New(cfg Config, reg *Registry) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	adminHash, err := cfg.HashedAdminSecret()
	if err != nil {
		return nil, err
	}

	store, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect history store: %w", err)
	}

	if reg == nil {
		reg = NewRegistry()
	}

	s := &Server{
		cfg:       cfg,
		Registry:  reg,
		history:   store,
		adminHash: adminHash,
		signKey:   adminSignKey(cfg.TokenSecret, adminHash),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Post("/token", s.handleCreateToken)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin(s.signKey, s.cfg.UnauthDelay()))
		r.Get("/grammars/{name}/stats", s.handleStats)
		r.Get("/grammars/{name}/last-match", s.handleLastMatch)
	})

	s.router = r
}

// ServeHTTP lets a Server be mounted directly into another router, or
// used with httptest, without going through ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// ListenAndServe starts serving on cfg.BindAddress. It blocks until the
// server stops, returning http.ErrServerClosed on a graceful Shutdown.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.BindAddress,
		Handler: s,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops a Server started with ListenAndServe, and
// closes its history store.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = s.httpServer.Shutdown(ctx)
	}
	closeErr := s.history.Close()

	if shutdownErr != nil {
		return shutdownErr
	}
	return closeErr
}

// RecordParse updates name's most recent parse result for the stats and
// last-match endpoints, and, if a durable history store is configured,
// persists a snapshot of it. Persistence failures are logged rather
// than returned, matching the "a debug aid must never be the reason a
// host's real parse fails" Non-goal carried from spec.md.
func (s *Server) RecordParse(ctx context.Context, name string, res *recognize.Result) {
	e, ok := s.Registry.get(name)
	if !ok {
		return
	}
	e.recordResult(res)

	snap := output.NewSnapshot(name, res)
	if err := s.history.Record(ctx, name, snap); err != nil {
		log.Printf("debugserver: record history for %q: %v", name, err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)

		id := uuid.New()
		ctx := context.WithValue(req.Context(), requestIDKey, id)
		next.ServeHTTP(w, req.WithContext(ctx))

		remoteAddr := strings.SplitN(req.RemoteAddr, ":", 2)[0]
		log.Printf("%s %s %s %s", id, remoteAddr, req.Method, req.URL.Path)
	})
}

type requestIDKeyType int

const requestIDKey requestIDKeyType = 0

func requestID(req *http.Request) string {
	id, ok := req.Context().Value(requestIDKey).(uuid.UUID)
	if !ok {
		return ""
	}
	return id.String()
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		log.Printf("PANIC %s %s: %v\n%s", req.Method, req.URL.Path, panicErr, string(debug.Stack()))
		writeJSONError(w, req, http.StatusInternalServerError, "an internal error occurred")
	}
}

type tokenRequest struct {
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleCreateToken(w http.ResponseWriter, req *http.Request) {
	var body tokenRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, req, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(body.Secret)); err != nil {
		time.Sleep(s.cfg.UnauthDelay())
		writeJSONError(w, req, http.StatusUnauthorized, "incorrect admin secret")
		return
	}

	tok, err := generateAdminToken(s.signKey)
	if err != nil {
		writeJSONError(w, req, http.StatusInternalServerError, "could not generate token")
		return
	}

	writeJSON(w, req, http.StatusCreated, tokenResponse{Token: tok})
}

func writeJSON(w http.ResponseWriter, req *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("%s: write response: %v", requestID(req), err)
	}
}

type errorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	writeJSON(w, req, status, errorResponse{RequestID: requestID(req), Error: msg})
}
