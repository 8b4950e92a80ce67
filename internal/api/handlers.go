// Package api provides HTTP handlers for SchemeBot endpoints.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/schemebot/schemebot/internal/i18n"
	"github.com/schemebot/schemebot/internal/models"
)

// greetingTrigger is the synthetic first message that produces the opening
// greeting when a session starts or resets.
const greetingTrigger = "hello"

type createSessionRequest struct {
	Language string `json:"language"`
}

type postMessageRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type sessionResponse struct {
	SessionID string                   `json:"session_id"`
	Language  string                   `json:"language"`
	Reply     string                   `json:"reply"`
	State     models.ConversationState `json:"state"`
}

type messageResponse struct {
	Reply           string                   `json:"reply"`
	Language        string                   `json:"language"`
	State           models.ConversationState `json:"state"`
	ProfileComplete bool                     `json:"profile_complete"`
}

type profileResponse struct {
	Profile  models.Profile           `json:"profile"`
	State    models.ConversationState `json:"state"`
	Complete bool                     `json:"complete"`
}

type recommendationsResponse struct {
	Summary string               `json:"summary"`
	Schemes []models.MatchResult `json:"schemes"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.createSessionHandler: processing create request")

	// An empty body is fine; anything else malformed is not.
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("Server.createSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	language := s.resolveLanguage(req.Language, "", s.defaultLanguage)
	session := s.sessions.Create(language)

	session.Lock()
	reply := session.Flow.ProcessUserMessage(r.Context(), greetingTrigger, language)
	state := session.Flow.State()
	session.Unlock()

	writeJSONResponse(w, http.StatusCreated, models.Success(sessionResponse{
		SessionID: session.ID,
		Language:  language,
		Reply:     reply,
		State:     state,
	}))
}

func (s *Server) postMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.postMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Message must not be empty"))
		return
	}

	language := s.resolveLanguage(req.Language, req.Message, session.Language)

	session.Lock()
	session.Language = language
	reply := session.Flow.ProcessUserMessage(r.Context(), req.Message, language)
	state := session.Flow.State()
	profile := session.Flow.Profile()
	complete := profile.IsComplete()
	session.Unlock()

	slog.Debug("Server.postMessageHandler: message processed", "session_id", session.ID, "state", state, "language", language)
	writeJSONResponse(w, http.StatusOK, models.Success(messageResponse{
		Reply:           reply,
		Language:        language,
		State:           state,
		ProfileComplete: complete,
	}))
}

func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	session.Lock()
	matches := session.Flow.Recommendations()
	language := session.Language
	session.Unlock()

	writeJSONResponse(w, http.StatusOK, models.Success(recommendationsResponse{
		Summary: s.rec.FormatSummary(matches, language),
		Schemes: matches,
	}))
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	session.Lock()
	profile := session.Flow.Profile()
	state := session.Flow.State()
	session.Unlock()

	writeJSONResponse(w, http.StatusOK, models.Success(profileResponse{
		Profile:  profile,
		State:    state,
		Complete: profile.IsComplete(),
	}))
}

func (s *Server) resetSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	session.Lock()
	reply := session.Flow.Reset(session.Language)
	state := session.Flow.State()
	language := session.Language
	session.Unlock()

	slog.Info("Server.resetSessionHandler: session reset", "session_id", session.ID)
	writeJSONResponse(w, http.StatusOK, models.Success(sessionResponse{
		SessionID: session.ID,
		Language:  language,
		Reply:     reply,
		State:     state,
	}))
}

func (s *Server) schemeHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	language := s.resolveLanguage(r.URL.Query().Get("lang"), "", s.defaultLanguage)

	scheme, ok := s.rec.SchemeDetails(id, language)
	if !ok {
		slog.Warn("Server.schemeHandler: scheme not found", "scheme_id", id)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Scheme not found"))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.Success(scheme))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("SchemeBot API is healthy", nil))
}

// lookupSession resolves the {id} path segment to a live session, writing
// the error response when it cannot.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	session, err := s.sessions.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionExpired):
			writeJSONResponse(w, http.StatusGone, models.Error("Session expired"))
		default:
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		}
		return nil, false
	}
	return session, true
}

// resolveLanguage picks the conversation language: an explicitly requested
// supported language wins, then detection from the message text, then the
// fallback.
func (s *Server) resolveLanguage(requested, message, fallback string) string {
	if i18n.Supported(requested) {
		return requested
	}
	if message != "" {
		return i18n.DetectLanguage(message)
	}
	if fallback != "" {
		return fallback
	}
	return s.defaultLanguage
}
