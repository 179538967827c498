package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/flow"
	"github.com/mvigneshwaran/health-assistant/internal/i18n"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
	"github.com/mvigneshwaran/health-assistant/internal/media"
)

// Upload ceilings. Image data URLs and video chunks beyond these are
// rejected at the boundary.
const (
	maxImageBody = 12 << 20
	maxChunkBody = 8 << 20
)

type errorBody struct {
	Type    apperrors.ErrorType `json:"type"`
	Title   string              `json:"title"`
	Message string              `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation
// errors surface inline at the originating step; transport failures are
// the top-level banner.
func respondError(w http.ResponseWriter, lang domain.Language, err error) {
	status := http.StatusInternalServerError
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		status = http.StatusUnprocessableEntity
	case apperrors.ErrorTypeCapture, apperrors.ErrorTypeExtraction:
		status = http.StatusBadRequest
	case apperrors.ErrorTypeTransport:
		status = http.StatusBadGateway
	}

	title, terr := i18n.Text(lang, "errorTitle")
	if terr != nil {
		logger.Warn("Missing localized error title", "error", terr)
		title = "Error"
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respondJSON(w, status, map[string]errorBody{"error": {
		Type:    apperrors.TypeOf(err),
		Title:   title,
		Message: message,
	}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*flow.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &body) {
		return
	}
	lang := s.defaultLang
	if body.Language != "" {
		lang = domain.ParseLanguage(body.Language)
	}
	sess := s.sessions.Create(lang)
	respondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.Remove(sess.ID())
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Age         int    `json:"age"`
		Gender      string `json:"gender"`
		PastHistory string `json:"pastHistory"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	profile := domain.PatientProfile{
		Name:        body.Name,
		Age:         body.Age,
		Gender:      domain.Gender(body.Gender),
		PastHistory: body.PastHistory,
	}
	if err := sess.SubmitProfile(profile); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	sess.SetLanguage(domain.ParseLanguage(body.Language))
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSetNarrative(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := sess.SetNarrative(body.Text); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAppendTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Fragment string `json:"fragment"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := sess.AppendTranscript(body.Fragment); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAttachImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBody)
	var body struct {
		DataURL string `json:"dataUrl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	img, err := media.DecodeDataURL(body.DataURL)
	if err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	if err := sess.AttachImage(*img); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleOpenRecording(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.OpenRecording(); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRecordingChunk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	chunk, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChunkBody))
	if err != nil {
		respondError(w, sess.Language(), apperrors.NewCaptureError("failed to read video chunk"))
		return
	}
	if err := sess.AppendRecordingChunk(chunk); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "buffered"})
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.StopRecording(r.Context()); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCancelRecording(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.CancelRecording()
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rec, err := sess.Analyze(r.Context())
	if err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"record":   rec,
		"snapshot": sess.Snapshot(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.StartOver(); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		RecordID string `json:"recordId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	rec, found := s.history.FindByID(body.RecordID)
	if !found {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	if err := sess.View(rec); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleExitView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.ExitViewing(); err != nil {
		respondError(w, sess.Language(), err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": s.history.AllByDateDesc(),
	})
}

func (s *Server) handleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	rec, found := s.history.FindByID(chi.URLParam(r, "id"))
	if !found {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
