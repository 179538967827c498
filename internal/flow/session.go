package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
	"github.com/mvigneshwaran/health-assistant/internal/media"
)

// Phase is the currently visible step of the user journey.
type Phase string

const (
	PhaseAwaitingProfile  Phase = "awaiting_profile"
	PhaseAwaitingSymptoms Phase = "awaiting_symptoms"
	PhasePending          Phase = "pending"
	PhaseCompleted        Phase = "completed"
	PhaseViewing          Phase = "viewing"
)

// Deps are the collaborators a session drives.
type Deps struct {
	Analyzer  domain.Analyzer
	History   domain.HistoryService
	Extractor domain.FrameExtractor
	Notifier  domain.AlertNotifier // optional
}

// Session is the per-visitor flow state machine. Exactly one phase is
// active at a time; every failure returns the session to a previously
// valid phase.
type Session struct {
	mu        sync.Mutex
	id        string
	lang      domain.Language
	phase     Phase
	prevPhase Phase // phase interrupted by Viewing
	profile   *domain.PatientProfile
	capture   domain.SymptomCapture
	result    *domain.AnalysisResult
	viewing   *domain.HistoryRecord
	lastError string
	recorder  *media.Recorder
	deps      Deps
}

func NewSession(id string, lang domain.Language, deps Deps) *Session {
	return &Session{
		id:    id,
		lang:  lang,
		phase: PhaseAwaitingProfile,
		deps:  deps,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Language() domain.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLanguage switches the UI language. Allowed at any time; it only
// affects texts and the language directive of future submissions.
func (s *Session) SetLanguage(lang domain.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	ID        string                 `json:"sessionId"`
	Language  domain.Language        `json:"language"`
	Phase     Phase                  `json:"phase"`
	Profile   *domain.PatientProfile `json:"profile,omitempty"`
	Narrative string                 `json:"narrative"`
	HasImage  bool                   `json:"hasImage"`
	Recording bool                   `json:"recording"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Viewing   *domain.HistoryRecord  `json:"viewing,omitempty"`
	LastError string                 `json:"lastError,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.id,
		Language:  s.lang,
		Phase:     s.phase,
		Profile:   s.profile,
		Narrative: s.capture.Narrative,
		HasImage:  s.capture.Image != nil,
		Recording: s.recorder != nil && s.recorder.Active(),
		Result:    s.result,
		Viewing:   s.viewing,
		LastError: s.lastError,
	}
}

// SubmitProfile validates the profile and advances to symptom capture.
// The profile is immutable for the rest of the session.
func (s *Session) SubmitProfile(p domain.PatientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingProfile {
		return apperrors.NewValidationError("profile already submitted for this session")
	}
	if err := p.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	s.profile = &p
	s.phase = PhaseAwaitingSymptoms
	s.lastError = ""
	return nil
}

// SetNarrative replaces the typed symptom text.
func (s *Session) SetNarrative(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingSymptoms {
		return apperrors.NewValidationError("symptoms can only be edited during symptom capture")
	}
	s.capture.Narrative = text
	return nil
}

// AppendTranscript appends one recognized speech fragment to the
// narrative.
func (s *Session) AppendTranscript(fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingSymptoms {
		return apperrors.NewValidationError("symptoms can only be edited during symptom capture")
	}
	s.capture.Narrative = media.AppendFragment(s.capture.Narrative, fragment)
	return nil
}

// AttachImage sets the single image slot, replacing any prior image.
func (s *Session) AttachImage(img domain.StillImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingSymptoms {
		return apperrors.NewValidationError("images can only be attached during symptom capture")
	}
	s.capture.Image = &img
	return nil
}

// OpenRecording acquires the video capture handle. Any previously held
// stream is released first; acquisition is exclusive.
func (s *Session) OpenRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAwaitingSymptoms {
		return apperrors.NewValidationError("video can only be recorded during symptom capture")
	}
	if s.recorder != nil {
		s.recorder.Close()
	}
	s.recorder = media.NewRecorder()
	return s.recorder.Open()
}

// AppendRecordingChunk buffers one chunk of the active recording.
func (s *Session) AppendRecordingChunk(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder == nil {
		return apperrors.NewCaptureError("no active recording")
	}
	return s.recorder.AppendChunk(p)
}

// StopRecording finalizes the blob, extracts the mid-point frame and
// folds it into the image slot. The camera handle is released on every
// path; extraction failures leave the capture untouched.
func (s *Session) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder == nil {
		return apperrors.NewCaptureError("no active recording")
	}
	defer func() {
		s.recorder.Close()
		s.recorder = nil
	}()

	blob, err := s.recorder.Stop()
	if err != nil {
		return err
	}
	frame, err := s.deps.Extractor.ExtractFrame(ctx, blob)
	if err != nil {
		return err
	}
	s.capture.Image = frame
	return nil
}

// CancelRecording releases the capture handle without touching the
// symptom capture, the abandon-the-modal path.
func (s *Session) CancelRecording() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder != nil {
		s.recorder.Close()
		s.recorder = nil
	}
}

// Analyze runs the single-shot submission. On success the session lands
// in Completed and the record is appended to history; on failure it
// returns to AwaitingSymptoms with the narrative preserved and the image
// cleared.
func (s *Session) Analyze(ctx context.Context) (*domain.HistoryRecord, error) {
	s.mu.Lock()
	if s.phase != PhaseAwaitingSymptoms {
		s.mu.Unlock()
		return nil, apperrors.NewValidationError("no symptom submission in progress")
	}
	if !s.capture.HasNarrative() {
		s.lastError = "symptom narrative must not be empty"
		s.mu.Unlock()
		return nil, apperrors.NewValidationError("symptom narrative must not be empty")
	}
	profile := *s.profile
	capture := s.capture
	lang := s.lang
	s.phase = PhasePending
	s.lastError = ""
	s.mu.Unlock()

	result, err := s.deps.Analyzer.Analyze(ctx, lang, profile, capture)

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseAwaitingSymptoms
		s.capture.Image = nil // cleared so a retry never resubmits inconsistent state
		s.lastError = userMessage(err)
		s.mu.Unlock()
		return nil, err
	}
	s.result = result
	s.phase = PhaseCompleted
	s.mu.Unlock()

	rec, perr := s.deps.History.Append(ctx, profile, *result)
	if perr != nil {
		// Best-effort persistence: the completed analysis still stands.
		logger.Warn("History append was not persisted", "session_id", s.id, "error", perr)
	}
	if result.IsCritical && s.deps.Notifier != nil {
		if err := s.deps.Notifier.SendCriticalAlert(ctx, rec); err != nil {
			logger.Error("Failed to deliver critical alert", "session_id", s.id, "error", err)
		}
	}
	return rec, nil
}

// StartOver clears profile, capture, result and error and returns to the
// first step. Not allowed while a submission is in flight.
func (s *Session) StartOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhasePending {
		return apperrors.NewValidationError("analysis in progress")
	}
	if s.recorder != nil {
		s.recorder.Close()
		s.recorder = nil
	}
	s.profile = nil
	s.capture = domain.SymptomCapture{}
	s.result = nil
	s.viewing = nil
	s.lastError = ""
	s.phase = PhaseAwaitingProfile
	return nil
}

// View shows a stored historical record, remembering the phase it
// interrupted.
func (s *Session) View(rec *domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseAwaitingProfile, PhaseAwaitingSymptoms, PhaseCompleted:
		s.prevPhase = s.phase
		s.viewing = rec
		s.phase = PhaseViewing
		return nil
	}
	return apperrors.NewValidationError("history cannot be viewed right now")
}

// ExitViewing leaves the history detail and restores the interrupted
// phase; the client returns to the history list.
func (s *Session) ExitViewing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseViewing {
		return apperrors.NewValidationError("not viewing a history record")
	}
	s.phase = s.prevPhase
	s.viewing = nil
	return nil
}

// userMessage strips internal detail from an error before it is surfaced.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "analysis failed"
}
