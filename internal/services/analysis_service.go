package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
)

// AnalysisService runs one submission through the external model:
// precondition check, request build, single call, shape validation. No
// retry, no internal timeout; the caller owns resubmission.
type AnalysisService struct {
	client domain.ModelClient
}

func NewAnalysisService(client domain.ModelClient) *AnalysisService {
	return &AnalysisService{client: client}
}

// Analyze implements domain.Analyzer.
func (s *AnalysisService) Analyze(ctx context.Context, lang domain.Language, profile domain.PatientProfile, capture domain.SymptomCapture) (*domain.AnalysisResult, error) {
	if !capture.HasNarrative() {
		return nil, apperrors.NewValidationError("symptom narrative must not be empty")
	}

	req := BuildRequest(lang, profile, capture)
	logger.Infof("Submitting analysis for %s (image attached: %t)", profile.Name, req.Image != nil)

	text, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, apperrors.NewTransportError(err, "failed to get analysis from AI")
	}

	result, err := parseAnalysisResult(text)
	if err != nil {
		return nil, apperrors.NewTransportError(err, "AI returned a malformed analysis")
	}
	return result, nil
}

var requiredResultFields = []string{"assessment", "suggestions", "isCritical", "criticalityReason", "disclaimer"}

// parseAnalysisResult validates the model text against the expected
// result shape. The payload is untrusted until every required field is
// present with the right type.
func parseAnalysisResult(text string) (*domain.AnalysisResult, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	for _, name := range requiredResultFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("response is missing required field %q", name)
		}
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("response fields have wrong types: %w", err)
	}
	if len(result.Suggestions) == 0 {
		return nil, fmt.Errorf("response contains no suggestions")
	}
	return &result, nil
}

// extractJSON pulls the JSON object out of the model text, tolerating
// code fences or prose around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
