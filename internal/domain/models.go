package domain

import (
	"errors"
	"strings"
	"time"
)

// Language is one of the two supported UI languages.
type Language string

const (
	LangEnglish Language = "en"
	LangTamil   Language = "ta"
)

// ParseLanguage returns the language for a tag, defaulting to English.
func ParseLanguage(tag string) Language {
	if Language(strings.ToLower(strings.TrimSpace(tag))) == LangTamil {
		return LangTamil
	}
	return LangEnglish
}

// Gender as collected on the patient form.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Profile validation failures.
var (
	ErrProfileName   = errors.New("name must not be empty")
	ErrProfileAge    = errors.New("age must be between 1 and 120")
	ErrProfileGender = errors.New("gender must be male, female or other")
)

// PatientProfile holds the demographics entered on the first step.
// It is immutable once submitted for a session.
type PatientProfile struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	PastHistory string `json:"pastHistory"`
}

// Validate checks the profile invariants: non-empty name, age in (0,120],
// gender chosen.
func (p PatientProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProfileName
	}
	if p.Age <= 0 || p.Age > 120 {
		return ErrProfileAge
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
		return nil
	}
	return ErrProfileGender
}

// StillImage is a single encoded still image plus its MIME type.
type StillImage struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// SymptomCapture accumulates the free-text narrative (typed plus
// transcribed fragments) and at most one attached image. A new photo or an
// extracted video frame overwrites any prior image, last write wins.
type SymptomCapture struct {
	Narrative string      `json:"narrative"`
	Image     *StillImage `json:"image,omitempty"`
}

// HasNarrative reports whether the narrative carries any non-whitespace
// content, the precondition for submission.
func (c SymptomCapture) HasNarrative() bool {
	return strings.TrimSpace(c.Narrative) != ""
}

// AnalysisRequest is the derived, read-only payload for one external call.
type AnalysisRequest struct {
	Instruction string
	Image       *StillImage
}

// AnalysisResult is the shape-validated response of the model.
type AnalysisResult struct {
	Assessment        string   `json:"assessment"`
	Suggestions       []string `json:"suggestions"`
	IsCritical        bool     `json:"isCritical"`
	CriticalityReason string   `json:"criticalityReason"`
	Disclaimer        string   `json:"disclaimer"`
}

// HistoryRecord is one completed analysis as persisted. The JSON field
// names match the stored history blob format.
type HistoryRecord struct {
	ID       string         `json:"id"`
	Date     time.Time      `json:"date"`
	UserInfo PatientProfile `json:"userInfo"`
	Result   AnalysisResult `json:"result"`
}
