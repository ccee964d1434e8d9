package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"portfolio-api/config"
	"portfolio-api/mail"
	"portfolio-api/telemetry"
)

// Messages shown to visitors. Provider error detail is only ever logged.
const (
	msgUnexpected         = "An unexpected error occurred. Please try again later."
	msgNotInitialized     = "Service not properly initialized. Please check your environment variables and try again."
	msgRetrievalFailed    = "Failed to retrieve context from the vector index. Please try again later."
	msgGenerationFailed   = "Failed to generate response. Please try again later."
	msgRateLimited        = "Too many requests. Please try again later."
	msgFieldsRequired     = "All fields are required"
	msgEmailNotConfigured = "Email service is not properly configured. Please check your Resend setup."
	msgSendFailed         = "Failed to send email. Please try again later."
	msgEmailSent          = "Email sent successfully"
	msgEmailVerified      = "Email configuration verified"
)

// answerer is the chat pipeline as the HTTP layer sees it.
type answerer interface {
	Answer(ctx context.Context, message string) (string, error)
}

type Server struct {
	chat   answerer
	mailer mail.Sender

	// chatErr and contactErr are fixed at startup; when set, every request
	// to that endpoint gets them back without touching a provider.
	chatErr    string
	contactErr string

	preflight bool
	limiter   *rate.Limiter
	staticDir string
}

// NewServer decides once, from cfg and whatever clients could be built,
// which endpoints are usable. chat or mailer may be nil when their clients
// failed to initialize.
func NewServer(cfg *config.Config, chat answerer, mailer mail.Sender) *Server {
	s := &Server{
		chat:      chat,
		mailer:    mailer,
		preflight: cfg.Contact.PreflightOnSubmit,
		staticDir: cfg.Server.StaticDir,
	}

	if missing := cfg.MissingChatCredentials(); len(missing) > 0 {
		s.chatErr = missingVarsMessage(missing)
	} else if chat == nil {
		s.chatErr = msgNotInitialized
	}

	if missing := cfg.MissingContactCredentials(); len(missing) > 0 {
		s.contactErr = missingVarsMessage(missing)
	} else if mailer == nil {
		s.contactErr = msgNotInitialized
	}

	if cfg.Chat.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Chat.RateLimit), max(cfg.Chat.RateBurst, 1))
	}
	return s
}

func missingVarsMessage(missing []string) string {
	return "Missing required environment variables: " + strings.Join(missing, ", ")
}

// Handler returns the routed, logged and panic-safe HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", telemetry.Handler())
	mux.HandleFunc("/api/chat", s.chatHandler)
	mux.HandleFunc("/api/contact", s.contactHandler)
	mux.HandleFunc("/api/contact/verify", s.verifyHandler)

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	var h http.Handler = mux
	h = recoverer(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.NewHandler(log.Logger)(h)
	return h
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// recoverer turns a panic in a handler into the generic error response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				hlog.FromRequest(r).Error().Interface("panic", rec).Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, msgUnexpected)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
