package adapter

import "context"

// Button sends Data back as a callback when pressed.
type Button struct {
	Text string
	Data string
}

// ReplyMarkup is an inline keyboard attached to a message.
type ReplyMarkup struct {
	Buttons [][]Button
}

type SendMessageParams struct {
	ChatID      int64
	Text        string
	ReplyMarkup *ReplyMarkup
}

// Notifier delivers a message to a chat. Implementations wrap transport
// failures in *domain.NotifyError.
type Notifier interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
}
