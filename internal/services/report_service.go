package services

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mvigneshwaran/health-assistant/internal/domain"
)

// ReportService forwards critical analyses to a clinician's Telegram
// chat. Delivery is best effort and never blocks the analysis flow.
type ReportService struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewReportService(token string, chatID int64) (*ReportService, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert bot: %w", err)
	}
	return &ReportService{api: api, chatID: chatID}, nil
}

// SendCriticalAlert implements domain.AlertNotifier.
func (s *ReportService) SendCriticalAlert(ctx context.Context, rec *domain.HistoryRecord) error {
	text := fmt.Sprintf(
		"⚠️ Critical symptom analysis\n\nPatient: %s (%d, %s)\nAssessment: %s\nReason: %s\nRecorded: %s\nRecord: %s",
		rec.UserInfo.Name, rec.UserInfo.Age, rec.UserInfo.Gender,
		rec.Result.Assessment, rec.Result.CriticalityReason,
		rec.Date.Format("2006-01-02 15:04 MST"), rec.ID,
	)
	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send critical alert: %w", err)
	}
	return nil
}
