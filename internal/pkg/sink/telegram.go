package sink

import (
	"context"

	"github.com/go-telegram/bot"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type telegramSink struct {
	bot *bot.Bot
}

func NewTelegram(b *bot.Bot) *telegramSink {
	return &telegramSink{bot: b}
}

func (s *telegramSink) Platform() model.Platform {
	return model.PlatformTelegram
}

func (s *telegramSink) SendText(ctx context.Context, sub model.Subscriber, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: sub.ChatID,
		Text:   text,
	})
	return err
}
