package media

import (
	"encoding/base64"
	"strings"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
)

// DecodeDataURL decodes a browser-style data URL
// ("data:image/jpeg;base64,...") into a StillImage.
func DecodeDataURL(s string) (*domain.StillImage, error) {
	head, payload, found := strings.Cut(s, ";base64,")
	if !found || !strings.HasPrefix(head, "data:") {
		return nil, apperrors.NewCaptureError("image is not a base64 data URL")
	}
	mimeType := strings.TrimPrefix(head, "data:")
	if mimeType == "" {
		return nil, apperrors.NewCaptureError("image data URL has no MIME type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.NewCaptureError("image payload is not valid base64")
	}
	if len(data) == 0 {
		return nil, apperrors.NewCaptureError("image payload is empty")
	}
	return &domain.StillImage{MIMEType: mimeType, Data: data}, nil
}

// AppendFragment joins a recognized speech fragment onto the narrative
// with a single separating space. Blank fragments leave the narrative
// untouched.
func AppendFragment(narrative, fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return narrative
	}
	if narrative == "" {
		return fragment
	}
	return strings.TrimRight(narrative, " ") + " " + fragment
}
