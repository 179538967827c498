package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
)

const defaultExtractTimeout = 15 * time.Second

// Midpoint is the deterministic seek point used for frame extraction:
// half the clip duration, so repeated extraction from the same blob
// always lands on the same frame.
func Midpoint(duration time.Duration) time.Duration {
	return duration / 2
}

// FFmpegExtractor extracts one mid-point JPEG frame from a video blob by
// shelling out to ffprobe and ffmpeg. All calls are bounded by a timeout.
type FFmpegExtractor struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

func NewFFmpegExtractor(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpegExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	return &FFmpegExtractor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, timeout: timeout}
}

// ExtractFrame implements domain.FrameExtractor.
func (e *FFmpegExtractor) ExtractFrame(ctx context.Context, video []byte) (*domain.StillImage, error) {
	if len(video) == 0 {
		return nil, apperrors.NewExtractionError(nil, "video blob is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "capture-*.webm")
	if err != nil {
		return nil, apperrors.NewExtractionError(err, "failed to stage video blob")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(video); err != nil {
		tmp.Close()
		return nil, apperrors.NewExtractionError(err, "failed to stage video blob")
	}
	tmp.Close()

	duration, err := e.probeDuration(ctx, tmp.Name())
	if err != nil {
		return nil, err
	}

	seek := Midpoint(duration)
	logger.Infof("Extracting frame at %.3fs of %.3fs clip", seek.Seconds(), duration.Seconds())

	frame, err := e.renderFrame(ctx, tmp.Name(), seek)
	if err != nil {
		return nil, err
	}
	return &domain.StillImage{MIMEType: "image/jpeg", Data: frame}, nil
}

func (e *FFmpegExtractor) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, apperrors.NewExtractionError(err, "failed to probe video duration").
			WithContext("stderr", stderr.String())
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil || seconds <= 0 {
		return 0, apperrors.NewExtractionError(err, "video has no decodable duration")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (e *FFmpegExtractor) renderFrame(ctx context.Context, path string, seek time.Duration) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", seek.Seconds()),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, apperrors.NewExtractionError(err, "failed to decode video frame").
			WithContext("stderr", stderr.String())
	}
	if out.Len() == 0 {
		return nil, apperrors.NewExtractionError(nil, "decoder produced no frame")
	}
	return out.Bytes(), nil
}
