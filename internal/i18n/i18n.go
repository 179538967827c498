package i18n

import (
	"fmt"

	"github.com/mvigneshwaran/health-assistant/internal/domain"
)

// uiText holds the two fixed language packs. There is no runtime
// translation fallback: a missing key is an error the caller handles.
var uiText = map[domain.Language]map[string]string{
	domain.LangEnglish: {
		"title":              "AI Healthcare Assistant",
		"userInfoTitle":      "Tell us about the patient",
		"nameLabel":          "Full Name",
		"ageLabel":           "Age",
		"genderLabel":        "Gender",
		"genderMale":         "Male",
		"genderFemale":       "Female",
		"genderOther":        "Other",
		"pastHistoryLabel":   "Past Medical History (Optional)",
		"symptomTitle":       "Describe Your Symptoms",
		"micButton":          "Use Microphone",
		"micListening":       "Listening...",
		"cameraButton":       "Upload Photo",
		"videoButton":        "Record Video",
		"analyzeButton":      "Analyze Symptoms",
		"loaderText":         "Our AI is analyzing your symptoms. This may take a moment...",
		"resultTitle":        "Analysis Result",
		"assessmentLabel":    "AI Assessment",
		"suggestionsLabel":   "Suggestions",
		"criticalAlertTitle": "Critical Alert!",
		"consultDoctor":      "Consult a Doctor Now",
		"startOver":          "Start Over",
		"backToHistory":      "Back to History",
		"errorTitle":         "An Error Occurred",
		"analysisFailed":     "Failed to get analysis from AI. Please try again.",
		"footerDisclaimer":   "Disclaimer: This AI assistant is for informational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment.",
		"viewHistory":        "View History",
		"pastAnalysesTitle":  "Past Analyses",
		"noPastAnalyses":     "You have no saved analyses yet.",
		"viewReport":         "View Report",
	},
	domain.LangTamil: {
		"title":              "AI சுகாதார உதவியாளர்",
		"userInfoTitle":      "நோயாளியைப் பற்றிச் சொல்லுங்கள்",
		"nameLabel":          "முழு பெயர்",
		"ageLabel":           "வயது",
		"genderLabel":        "பாலினம்",
		"genderMale":         "ஆண்",
		"genderFemale":       "பெண்",
		"genderOther":        "மற்றவை",
		"pastHistoryLabel":   "கடந்தகால மருத்துவ வரலாறு (விரும்பினால்)",
		"symptomTitle":       "உங்கள் அறிகுறிகளை விவரிக்கவும்",
		"micButton":          "மைக்ரோஃபோனைப் பயன்படுத்தவும்",
		"micListening":       "கேட்கிறது...",
		"cameraButton":       "புகைப்படத்தைப் பதிவேற்றவும்",
		"videoButton":        "வீடியோ பதிவு செய்",
		"analyzeButton":      "அறிகுறிகளைப் பகுப்பாய்வு செய்",
		"loaderText":         "எங்கள் AI உங்கள் அறிகுறிகளைப் பகுப்பாய்வு செய்கிறது. இதற்கு சிறிது நேரம் ஆகலாம்...",
		"resultTitle":        "பகுப்பாய்வு முடிவு",
		"assessmentLabel":    "AI மதிப்பீடு",
		"suggestionsLabel":   "பரிந்துரைகள்",
		"criticalAlertTitle": "முக்கிய எச்சரிக்கை!",
		"consultDoctor":      "இப்போதே மருத்துவரை அணுகவும்",
		"startOver":          "புதிதாகத் தொடங்கு",
		"backToHistory":      "வரலாற்றுக்குத் திரும்பு",
		"errorTitle":         "ஒரு பிழை ஏற்பட்டது",
		"analysisFailed":     "AI இடமிருந்து பகுப்பாய்வைப் பெற முடியவில்லை. மீண்டும் முயற்சிக்கவும்.",
		"footerDisclaimer":   "பொறுப்புத் துறப்பு: இந்த AI உதவியாளர் தகவல் நோக்கங்களுக்காக மட்டுமே மற்றும் தொழில்முறை மருத்துவ ஆலோசனை, நோயறிதல் அல்லது சிகிச்சைக்கு மாற்றாக இல்லை.",
		"viewHistory":        "வரலாற்றைக் காண்க",
		"pastAnalysesTitle":  "கடந்தகால பகுப்பாய்வுகள்",
		"noPastAnalyses":     "உங்களிடம் இதுவரை சேமிக்கப்பட்ட பகுப்பாய்வுகள் எதுவும் இல்லை.",
		"viewReport":         "அறிக்கையைக் காண்க",
	},
}

// Text returns the localized string for a key.
func Text(lang domain.Language, key string) (string, error) {
	table, ok := uiText[lang]
	if !ok {
		return "", fmt.Errorf("unsupported language %q", lang)
	}
	value, ok := table[key]
	if !ok {
		return "", fmt.Errorf("missing %s translation for key %q", lang, key)
	}
	return value, nil
}

// Languages returns the supported language tags.
func Languages() []domain.Language {
	return []domain.Language{domain.LangEnglish, domain.LangTamil}
}
