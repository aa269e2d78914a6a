// Package bridge implements the local HTTP API a browser extension uses to
// request autofill credentials.
package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dmitrenko/passlock/internal/logging"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/urlx"
)

// maxBodySize bounds the request body read before any parsing happens.
const maxBodySize = 1 << 20

// Server answers token-authenticated JSON requests from the browser
// extension by reading the shared session handle. The pairing token is the
// only authentication, so the server must be bound to a loopback address
// and never exposed remotely.
type Server struct {
	addr    string
	token   string
	handle  *session.Handle
	logger  logging.Logger
	limiter *multiLimiter
}

type fillRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"`
	URL    string `json:"url"`
}

type matchedEntry struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

// NewServer wires a bridge server. token is the process-lifetime pairing
// token shown to the user at startup.
func NewServer(addr, token string, handle *session.Handle, logger logging.Logger) *Server {
	return &Server{
		addr:    addr,
		token:   token,
		handle:  handle,
		logger:  logger.With("component", "bridge"),
		limiter: newMultiLimiter(20, 40, 5*time.Minute),
	}
}

// Run serves until ctx is cancelled. The session lock is only ever taken
// inside a request handler, never around the accept loop.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "extension bridge listening", "addr", s.addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleFill).Methods(http.MethodPost)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger.With("req_id", uuid.NewString())

	if !s.limiter.allow(clientAddr(r)) {
		log.Warn(ctx, "request rate limited", "client", clientAddr(r))
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Invalid request"})
		return
	}

	var req fillRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Invalid request"})
		return
	}

	if req.Token != s.token {
		log.Warn(ctx, "rejected request with invalid token")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	if req.Action != "fill" || req.URL == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Invalid request"})
		return
	}

	resp := s.matchEntries(req.URL)
	log.Debug(ctx, "fill request handled")
	writeJSON(w, http.StatusOK, resp)
}

// matchEntries holds the session lock only while scanning the open vault.
func (s *Server) matchEntries(queryURL string) any {
	var matches []matchedEntry
	active := false

	s.handle.Visit(func(sess *session.Session) {
		if sess == nil || !sess.Active() {
			return
		}
		active = true
		for _, e := range sess.Vault().ListEntries() {
			if e.URL == "" {
				continue
			}
			if urlx.DomainsMatch(e.URL, queryURL) {
				matches = append(matches, matchedEntry{
					Username: e.Username,
					Password: e.Password,
					URL:      e.URL,
				})
			}
		}
	})

	if !active {
		return map[string]string{"status": "error", "message": "No session open"}
	}

	switch len(matches) {
	case 0:
		return map[string]string{"status": "not_found"}
	case 1:
		return map[string]string{
			"status":   "ok",
			"mode":     "single",
			"username": matches[0].Username,
			"password": matches[0].Password,
		}
	default:
		return map[string]any{
			"status":  "ok",
			"mode":    "multiple",
			"entries": matches,
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
