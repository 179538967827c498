package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/flow"
)

// Server exposes the intake flow and history views over a JSON API.
type Server struct {
	sessions    *flow.Manager
	history     domain.HistoryService
	defaultLang domain.Language
}

func New(sessions *flow.Manager, history domain.HistoryService, defaultLang domain.Language) *Server {
	return &Server{
		sessions:    sessions,
		history:     history,
		defaultLang: defaultLang,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleRemoveSession)
			r.Post("/profile", s.handleSubmitProfile)
			r.Post("/language", s.handleSetLanguage)
			r.Post("/narrative", s.handleSetNarrative)
			r.Post("/transcript", s.handleAppendTranscript)
			r.Post("/image", s.handleAttachImage)
			r.Post("/recording/open", s.handleOpenRecording)
			r.Post("/recording/chunk", s.handleRecordingChunk)
			r.Post("/recording/stop", s.handleStopRecording)
			r.Delete("/recording", s.handleCancelRecording)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/reset", s.handleReset)
			r.Post("/view", s.handleView)
			r.Delete("/view", s.handleExitView)
		})
		r.Get("/history", s.handleHistoryList)
		r.Get("/history/{id}", s.handleHistoryDetail)
	})

	return r
}
