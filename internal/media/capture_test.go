package media

import (
	"encoding/base64"
	"testing"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
)

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	img, err := DecodeDataURL("data:image/jpeg;base64," + payload)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", img.MIMEType)
	}
	if string(img.Data) != "fake-jpeg-bytes" {
		t.Errorf("Data = %q, want fake-jpeg-bytes", img.Data)
	}
}

func TestDecodeDataURLRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"no prefix":      "image/jpeg;base64,AAAA",
		"no base64 part": "data:image/jpeg",
		"empty mime":     "data:;base64,AAAA",
		"bad base64":     "data:image/png;base64,!!not-base64!!",
		"empty payload":  "data:image/png;base64,",
	}
	for name, input := range cases {
		if _, err := DecodeDataURL(input); err == nil {
			t.Errorf("%s: expected error for %q", name, input)
		} else if !apperrors.IsType(err, apperrors.ErrorTypeCapture) {
			t.Errorf("%s: error type = %v, want capture", name, apperrors.TypeOf(err))
		}
	}
}

func TestAppendFragment(t *testing.T) {
	cases := []struct {
		narrative, fragment, want string
	}{
		{"", "mild fever", "mild fever"},
		{"mild fever", "and cough", "mild fever and cough"},
		{"mild fever", "  and cough  ", "mild fever and cough"},
		{"mild fever ", "and cough", "mild fever and cough"},
		{"mild fever", "", "mild fever"},
		{"mild fever", "   ", "mild fever"},
	}
	for _, c := range cases {
		if got := AppendFragment(c.narrative, c.fragment); got != c.want {
			t.Errorf("AppendFragment(%q, %q) = %q, want %q", c.narrative, c.fragment, got, c.want)
		}
	}
}
