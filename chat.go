package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"portfolio-api/rag"
	"portfolio-api/telemetry"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// POST /api/chat  { "message": "your question" }
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger := hlog.FromRequest(r)

	if s.chatErr != "" {
		telemetry.ChatRequests.WithLabelValues("config_error").Inc()
		logger.Error().Str("reason", s.chatErr).Msg("chat unavailable")
		writeError(w, http.StatusInternalServerError, s.chatErr)
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		telemetry.ChatRequests.WithLabelValues("rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	// A body that does not decode is reported like any other unexpected
	// failure, not as a 400.
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		telemetry.ChatRequests.WithLabelValues("unexpected_error").Inc()
		logger.Error().Err(err).Msg("decoding chat request")
		writeError(w, http.StatusInternalServerError, msgUnexpected)
		return
	}

	logger.Info().Str("message", req.Message).Msg("chat question")
	answer, err := s.chat.Answer(r.Context(), req.Message)
	if err != nil {
		outcome, msg := "unexpected_error", msgUnexpected
		switch {
		case errors.Is(err, rag.ErrRetrieval):
			outcome, msg = "retrieval_error", msgRetrievalFailed
		case errors.Is(err, rag.ErrGeneration):
			outcome, msg = "generation_error", msgGenerationFailed
		}
		telemetry.ChatRequests.WithLabelValues(outcome).Inc()
		logger.Error().Err(err).Str("outcome", outcome).Msg("chat failed")
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	telemetry.ChatRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}
