package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"portfolio-api/mail"
	"portfolio-api/telemetry"
)

// POST /api/contact  { "name": "...", "email": "...", "message": "..." }
//
// Submissions are not deduplicated: sending the same form twice sends two
// emails.
func (s *Server) contactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := hlog.FromRequest(r)

	if s.contactErr != "" {
		telemetry.ContactRequests.WithLabelValues("config_error").Inc()
		logger.Error().Str("reason", s.contactErr).Msg("contact form unavailable")
		writeError(w, http.StatusInternalServerError, s.contactErr)
		return
	}

	if s.preflight && !s.verifyEmail(r.Context(), logger) {
		telemetry.ContactRequests.WithLabelValues("config_error").Inc()
		writeError(w, http.StatusInternalServerError, msgEmailNotConfigured)
		return
	}

	var sub mail.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		telemetry.ContactRequests.WithLabelValues("unexpected_error").Inc()
		logger.Error().Err(err).Msg("decoding contact request")
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if err := sub.Validate(); err != nil {
		telemetry.ContactRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	msg, err := mail.NewContactMessage(&sub)
	if err != nil {
		telemetry.ContactRequests.WithLabelValues("unexpected_error").Inc()
		logger.Error().Err(err).Msg("rendering contact email")
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	logger.Info().
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("sending contact email")

	id, err := s.mailer.Send(r.Context(), msg)
	if err != nil {
		telemetry.ContactRequests.WithLabelValues("send_error").Inc()
		logger.Error().Err(err).Msg("sending contact email")
		writeError(w, http.StatusInternalServerError, msgSendFailed)
		return
	}

	telemetry.ContactRequests.WithLabelValues("ok").Inc()
	logger.Info().Str("id", id).Msg("contact email sent")
	writeJSON(w, http.StatusOK, map[string]string{"message": msgEmailSent})
}

// POST /api/contact/verify sends a test email to the site owner.
func (s *Server) verifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.contactErr != "" {
		writeError(w, http.StatusInternalServerError, s.contactErr)
		return
	}
	if !s.verifyEmail(r.Context(), hlog.FromRequest(r)) {
		writeError(w, http.StatusInternalServerError, msgEmailNotConfigured)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgEmailVerified})
}

func (s *Server) verifyEmail(ctx context.Context, logger *zerolog.Logger) bool {
	id, err := s.mailer.Send(ctx, mail.NewTestMessage())
	if err != nil {
		logger.Error().Err(err).Msg("email configuration test failed")
		return false
	}
	logger.Info().Str("id", id).Msg("email configuration test succeeded")
	return true
}
