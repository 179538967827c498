package flow

import (
	"context"
	"testing"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/services"
	"github.com/mvigneshwaran/health-assistant/internal/storage"
)

type fakeAnalyzer struct {
	result *domain.AnalysisResult
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, lang domain.Language, profile domain.PatientProfile, capture domain.SymptomCapture) (*domain.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	frame *domain.StillImage
	err   error
}

func (f *fakeExtractor) ExtractFrame(ctx context.Context, video []byte) (*domain.StillImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.frame, nil
}

type fakeNotifier struct {
	alerts []*domain.HistoryRecord
}

func (f *fakeNotifier) SendCriticalAlert(ctx context.Context, rec *domain.HistoryRecord) error {
	f.alerts = append(f.alerts, rec)
	return nil
}

var asha = domain.PatientProfile{Name: "Asha", Age: 29, Gender: domain.GenderFemale}

var viralResult = domain.AnalysisResult{
	Assessment:  "Likely viral infection",
	Suggestions: []string{"Rest", "Hydrate", "Monitor temperature"},
	Disclaimer:  "Not medical advice.",
}

func newTestSession(t *testing.T, analyzer domain.Analyzer, notifier domain.AlertNotifier) (*Session, domain.HistoryService) {
	t.Helper()
	history := services.NewHistoryService(context.Background(), storage.NewMemoryStore())
	deps := Deps{
		Analyzer:  analyzer,
		History:   history,
		Extractor: &fakeExtractor{frame: &domain.StillImage{MIMEType: "image/jpeg", Data: []byte{1}}},
		Notifier:  notifier,
	}
	return NewSession("test-session", domain.LangEnglish, deps), history
}

func TestInitialStateAwaitsProfile(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if got := sess.Snapshot().Phase; got != PhaseAwaitingProfile {
		t.Fatalf("initial phase = %v, want %v", got, PhaseAwaitingProfile)
	}
}

func TestProfileSubmissionAdvancesFlow(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseAwaitingSymptoms {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseAwaitingSymptoms)
	}
	if *snap.Profile != asha {
		t.Errorf("stored profile = %+v, want %+v", *snap.Profile, asha)
	}

	// Profile is immutable for the session.
	if err := sess.SubmitProfile(asha); err == nil {
		t.Error("second SubmitProfile should fail")
	}
}

func TestProfileValidationBlocksAdvance(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	invalid := []domain.PatientProfile{
		{Name: "", Age: 29, Gender: domain.GenderFemale},
		{Name: "   ", Age: 29, Gender: domain.GenderFemale},
		{Name: "Asha", Age: 0, Gender: domain.GenderFemale},
		{Name: "Asha", Age: 121, Gender: domain.GenderFemale},
		{Name: "Asha", Age: -3, Gender: domain.GenderFemale},
		{Name: "Asha", Age: 29, Gender: ""},
		{Name: "Asha", Age: 29, Gender: "unknown"},
	}
	for _, p := range invalid {
		err := sess.SubmitProfile(p)
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("profile %+v: error type = %v, want validation", p, apperrors.TypeOf(err))
		}
		if sess.Snapshot().Phase != PhaseAwaitingProfile {
			t.Errorf("profile %+v advanced the flow", p)
		}
	}

	// Boundary age 120 is valid.
	if err := sess.SubmitProfile(domain.PatientProfile{Name: "Asha", Age: 120, Gender: domain.GenderFemale}); err != nil {
		t.Errorf("age 120 should validate, got %v", err)
	}
}

func TestBlankNarrativeIsRejectedWithoutExternalCall(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &viralResult}
	sess, history := newTestSession(t, analyzer, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("   \n"); err != nil {
		t.Fatal(err)
	}

	_, err := sess.Analyze(context.Background())
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("error type = %v, want validation", apperrors.TypeOf(err))
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseAwaitingSymptoms {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseAwaitingSymptoms)
	}
	if snap.LastError == "" {
		t.Error("validation error not surfaced")
	}
	if analyzer.calls != 0 {
		t.Errorf("external calls = %d, want 0", analyzer.calls)
	}
	if len(history.All()) != 0 {
		t.Error("history mutated on rejected submission")
	}
}

func TestSuccessfulAnalysisCompletesAndRecords(t *testing.T) {
	sess, history := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("mild fever and cough"); err != nil {
		t.Fatal(err)
	}

	rec, err := sess.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseCompleted {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseCompleted)
	}
	if snap.Result.Assessment != "Likely viral infection" {
		t.Errorf("Assessment = %q", snap.Result.Assessment)
	}
	if rec.UserInfo != asha {
		t.Errorf("record profile = %+v, profile did not round-trip", rec.UserInfo)
	}

	all := history.All()
	if len(all) != 1 {
		t.Fatalf("history records = %d, want 1", len(all))
	}
	if all[0].ID != rec.ID {
		t.Error("returned record does not match stored record")
	}
}

func TestCriticalResultTriggersAlert(t *testing.T) {
	critical := domain.AnalysisResult{
		Assessment:        "Possible acute coronary syndrome",
		Suggestions:       []string{"Call emergency services"},
		IsCritical:        true,
		CriticalityReason: "Crushing chest pain radiating to the left arm is a cardiac red flag.",
		Disclaimer:        "Not medical advice.",
	}
	notifier := &fakeNotifier{}
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &critical}, notifier)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("crushing chest pain radiating to left arm"); err != nil {
		t.Fatal(err)
	}

	rec, err := sess.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseCompleted {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseCompleted)
	}
	if !snap.Result.IsCritical || snap.Result.CriticalityReason == "" {
		t.Error("critical result must carry a non-empty reason")
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0].ID != rec.ID {
		t.Errorf("alerts = %d, want exactly one for the new record", len(notifier.alerts))
	}
}

func TestTransportFailureRestoresCapture(t *testing.T) {
	analyzer := &fakeAnalyzer{err: apperrors.NewTransportError(nil, "failed to get analysis from AI")}
	sess, history := newTestSession(t, analyzer, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("crushing chest pain"); err != nil {
		t.Fatal(err)
	}
	if err := sess.AttachImage(domain.StillImage{MIMEType: "image/jpeg", Data: []byte{9}}); err != nil {
		t.Fatal(err)
	}

	_, err := sess.Analyze(context.Background())
	if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
		t.Fatalf("error type = %v, want transport", apperrors.TypeOf(err))
	}

	snap := sess.Snapshot()
	if snap.Phase != PhaseAwaitingSymptoms {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseAwaitingSymptoms)
	}
	if snap.Narrative != "crushing chest pain" {
		t.Errorf("narrative = %q, must be preserved", snap.Narrative)
	}
	if snap.HasImage {
		t.Error("image must be cleared after a transport failure")
	}
	if snap.LastError == "" {
		t.Error("error message not surfaced")
	}
	if len(history.All()) != 0 {
		t.Error("history mutated on failure")
	}

	// The user can resubmit manually after the failure.
	if _, err := sess.Analyze(context.Background()); err == nil {
		t.Fatal("analyzer still failing, expected error")
	}
	if analyzer.calls != 2 {
		t.Errorf("external calls = %d, want 2 (one per manual submission)", analyzer.calls)
	}
}

func TestTranscriptAndImageCapture(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("mild fever"); err != nil {
		t.Fatal(err)
	}
	if err := sess.AppendTranscript(" and cough "); err != nil {
		t.Fatal(err)
	}
	if got := sess.Snapshot().Narrative; got != "mild fever and cough" {
		t.Errorf("narrative = %q", got)
	}

	// Last write wins on the single image slot.
	if err := sess.AttachImage(domain.StillImage{MIMEType: "image/png", Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	if err := sess.AttachImage(domain.StillImage{MIMEType: "image/jpeg", Data: []byte{2}}); err != nil {
		t.Fatal(err)
	}
	if !sess.Snapshot().HasImage {
		t.Error("image slot empty after attach")
	}
}

func TestCaptureEditsRequireSymptomPhase(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SetNarrative("too early"); err == nil {
		t.Error("SetNarrative before profile should fail")
	}
	if err := sess.AppendTranscript("too early"); err == nil {
		t.Error("AppendTranscript before profile should fail")
	}
	if err := sess.AttachImage(domain.StillImage{MIMEType: "image/png", Data: []byte{1}}); err == nil {
		t.Error("AttachImage before profile should fail")
	}
	if err := sess.OpenRecording(); err == nil {
		t.Error("OpenRecording before profile should fail")
	}
}

func TestRecordingFoldsFrameIntoImageSlot(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.OpenRecording(); err != nil {
		t.Fatalf("OpenRecording failed: %v", err)
	}
	if err := sess.AppendRecordingChunk([]byte("video-bytes")); err != nil {
		t.Fatalf("AppendRecordingChunk failed: %v", err)
	}
	if err := sess.StopRecording(context.Background()); err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
	snap := sess.Snapshot()
	if !snap.HasImage {
		t.Error("extracted frame not folded into image slot")
	}
	if snap.Recording {
		t.Error("camera handle not released after stop")
	}
}

func TestExtractionFailureLeavesCaptureUntouched(t *testing.T) {
	history := services.NewHistoryService(context.Background(), storage.NewMemoryStore())
	deps := Deps{
		Analyzer:  &fakeAnalyzer{result: &viralResult},
		History:   history,
		Extractor: &fakeExtractor{err: apperrors.NewExtractionError(nil, "failed to decode video frame")},
	}
	sess := NewSession("test-session", domain.LangEnglish, deps)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.AttachImage(domain.StillImage{MIMEType: "image/png", Data: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	if err := sess.OpenRecording(); err != nil {
		t.Fatal(err)
	}
	if err := sess.AppendRecordingChunk([]byte("broken")); err != nil {
		t.Fatal(err)
	}

	err := sess.StopRecording(context.Background())
	if !apperrors.IsType(err, apperrors.ErrorTypeExtraction) {
		t.Fatalf("error type = %v, want extraction", apperrors.TypeOf(err))
	}
	snap := sess.Snapshot()
	if !snap.HasImage {
		t.Error("prior image lost on extraction failure")
	}
	if snap.Recording {
		t.Error("camera handle not released on extraction failure")
	}
}

func TestCancelRecordingReleasesWithoutMutation(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.OpenRecording(); err != nil {
		t.Fatal(err)
	}
	if err := sess.AppendRecordingChunk([]byte("abandoned")); err != nil {
		t.Fatal(err)
	}
	sess.CancelRecording()
	snap := sess.Snapshot()
	if snap.Recording {
		t.Error("camera handle not released on cancel")
	}
	if snap.HasImage {
		t.Error("cancel must not mutate the capture")
	}
}

func TestReopeningRecordingReleasesPreviousStream(t *testing.T) {
	sess, _ := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.OpenRecording(); err != nil {
		t.Fatal(err)
	}
	if err := sess.AppendRecordingChunk([]byte("first")); err != nil {
		t.Fatal(err)
	}
	// A new capture session releases the previous stream and starts clean.
	if err := sess.OpenRecording(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := sess.AppendRecordingChunk([]byte("second")); err != nil {
		t.Fatal(err)
	}
	if err := sess.StopRecording(context.Background()); err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
}

func TestStartOverClearsEverythingButHistory(t *testing.T) {
	sess, history := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetNarrative("mild fever and cough"); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Analyze(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := sess.StartOver(); err != nil {
		t.Fatalf("StartOver failed: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseAwaitingProfile {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseAwaitingProfile)
	}
	if snap.Profile != nil || snap.Narrative != "" || snap.HasImage || snap.Result != nil || snap.LastError != "" {
		t.Error("StartOver left session state behind")
	}
	if len(history.All()) != 1 {
		t.Error("history must survive a session reset")
	}
}

func TestViewingInterruptsAndRestoresPhase(t *testing.T) {
	sess, history := newTestSession(t, &fakeAnalyzer{result: &viralResult}, nil)
	rec, err := history.Append(context.Background(), asha, viralResult)
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.SubmitProfile(asha); err != nil {
		t.Fatal(err)
	}

	if err := sess.View(rec); err != nil {
		t.Fatalf("View failed: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Phase != PhaseViewing {
		t.Errorf("phase = %v, want %v", snap.Phase, PhaseViewing)
	}
	if snap.Viewing == nil || snap.Viewing.ID != rec.ID {
		t.Error("viewing record not exposed")
	}

	if err := sess.ExitViewing(); err != nil {
		t.Fatalf("ExitViewing failed: %v", err)
	}
	if got := sess.Snapshot().Phase; got != PhaseAwaitingSymptoms {
		t.Errorf("phase after exit = %v, want the interrupted phase", got)
	}
	if err := sess.ExitViewing(); err == nil {
		t.Error("ExitViewing outside Viewing should fail")
	}
}

func TestManagerTracksSessions(t *testing.T) {
	m := NewManager(Deps{
		Analyzer:  &fakeAnalyzer{result: &viralResult},
		History:   services.NewHistoryService(context.Background(), storage.NewMemoryStore()),
		Extractor: &fakeExtractor{frame: &domain.StillImage{MIMEType: "image/jpeg", Data: []byte{1}}},
	})
	a := m.Create(domain.LangEnglish)
	b := m.Create(domain.LangTamil)
	if a.ID() == b.ID() {
		t.Fatal("sessions share an id")
	}
	if got, ok := m.Get(a.ID()); !ok || got != a {
		t.Error("Get did not resolve the session")
	}
	m.Remove(a.ID())
	if _, ok := m.Get(a.ID()); ok {
		t.Error("removed session still resolvable")
	}
	if b.Language() != domain.LangTamil {
		t.Errorf("language = %v, want ta", b.Language())
	}
}
