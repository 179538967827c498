package services

import (
	"fmt"

	"github.com/mvigneshwaran/health-assistant/internal/domain"
)

// BuildRequest assembles the single analysis request sent to the model:
// the instruction text plus the optional still image. Pure and
// deterministic given its inputs.
func BuildRequest(lang domain.Language, profile domain.PatientProfile, capture domain.SymptomCapture) *domain.AnalysisRequest {
	return &domain.AnalysisRequest{
		Instruction: BuildInstruction(lang, profile, capture.Narrative, capture.Image != nil),
		Image:       capture.Image,
	}
}

const imageInstruction = `
Image Analysis:
- An image has been provided. Analyze it for visible symptoms.
- Describe what you see in the image that is relevant to the user's described symptoms.
- Look for signs such as rashes, swelling, discoloration, injuries, inflammation, or any other visual abnormalities.
- Incorporate your visual findings into your overall assessment.
`

// BuildInstruction renders the natural-language instruction: patient
// details, the verbatim narrative, an image-analysis block iff an image
// was supplied, the numbered task description and the strict
// output-shape directive.
func BuildInstruction(lang domain.Language, profile domain.PatientProfile, symptoms string, hasImage bool) string {
	langInstruction := "Please provide the response in English language."
	if lang == domain.LangTamil {
		langInstruction = "Please provide the response in Tamil language."
	}

	imgBlock := ""
	if hasImage {
		imgBlock = imageInstruction
	}

	pastHistory := profile.PastHistory
	if pastHistory == "" {
		pastHistory = "None provided"
	}

	return fmt.Sprintf(`You are an expert AI Healthcare Assistant. Analyze the following user information and symptoms.
User Information:
- Name: %s
- Age: %d
- Gender: %s
- Past Medical History: %s
- Symptoms: %q
%s
Task:
1. Provide a brief, clear assessment of the possible conditions based on the symptoms (including visual symptoms from the image if provided).
2. List 3-5 actionable suggestions or potential home remedies.
3. Determine if the symptoms suggest a critical or rare condition that requires immediate medical attention.
4. If it is critical, explain why in the 'criticalityReason'.
5. Provide a standard disclaimer.
6. %s

Your response MUST be in the following JSON format. Do not include any text outside of the JSON object.

{
  "assessment": "string",
  "suggestions": ["string", "string", ...],
  "isCritical": boolean,
  "criticalityReason": "string (empty if not critical)",
  "disclaimer": "string"
}`,
		profile.Name, profile.Age, profile.Gender, pastHistory, symptoms, imgBlock, langInstruction)
}
