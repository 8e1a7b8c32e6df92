package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pnr-tracker/internal/domain"
	"pnr-tracker/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Sender)(nil)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers outbound messages. Every failure comes back as *domain.NotifyError.
type Sender struct {
	api messageSender
	log *zerolog.Logger
}

func NewSender(api messageSender, logger *zerolog.Logger) *Sender {
	compLog := logger.With().Str("component", "TelegramSender").Logger()
	return &Sender{api: api, log: &compLog}
}

func (s *Sender) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return &domain.NotifyError{ChatID: params.ChatID, Err: ctx.Err()}
	default:
	}

	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	if markup := buildMarkup(params.ReplyMarkup); markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := s.api.Send(msg); err != nil {
		s.log.Debug().Err(err).Int64("chat_id", params.ChatID).Msg("telegram send failed")
		return &domain.NotifyError{ChatID: params.ChatID, Err: err}
	}
	return nil
}

// buildMarkup converts the port's markup into an inline keyboard of callback buttons.
func buildMarkup(m *adapter.ReplyMarkup) *tgbotapi.InlineKeyboardMarkup {
	if m == nil {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Buttons))
	for _, row := range m.Buttons {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tgbotapi.NewInlineKeyboardButtonData(label(btn), btn.Data))
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func label(btn adapter.Button) string {
	if l := strings.TrimSpace(btn.Text); l != "" {
		return l
	}
	return "•"
}
