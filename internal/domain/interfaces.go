package domain

import "context"

// ModelClient issues one generation call to an external model. The
// response is the raw model text, parsed and validated by the caller.
type ModelClient interface {
	Generate(ctx context.Context, req *AnalysisRequest) (string, error)
}

// Analyzer runs the full single-shot analysis workflow.
type Analyzer interface {
	Analyze(ctx context.Context, lang Language, profile PatientProfile, capture SymptomCapture) (*AnalysisResult, error)
}

// FrameExtractor turns a recorded video blob into one representative
// still image.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, video []byte) (*StillImage, error)
}

// HistoryService owns the persisted collection of completed analyses.
type HistoryService interface {
	Append(ctx context.Context, profile PatientProfile, result AnalysisResult) (*HistoryRecord, error)
	All() []HistoryRecord
	AllByDateDesc() []HistoryRecord
	FindByID(id string) (*HistoryRecord, bool)
}

// AlertNotifier forwards critical analyses to a clinician channel.
type AlertNotifier interface {
	SendCriticalAlert(ctx context.Context, rec *HistoryRecord) error
}
