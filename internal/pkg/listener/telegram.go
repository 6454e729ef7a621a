// Package listener receives inbound chat messages and feeds them to the
// dispatcher. The Telegram listener long-polls through the bot API; the
// webhook front doors of other platforms are external to this process.
package listener

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/anicoll/chatbridge/internal/pkg/dispatcher"
	"github.com/anicoll/chatbridge/internal/pkg/model"
)

type commandDispatcher interface {
	Dispatch(ctx context.Context, sub model.Subscriber, text string) (string, error)
}

type telegramListener struct {
	bot        *bot.Bot
	dispatcher commandDispatcher
	logger     *zap.Logger
}

func NewTelegram(token string, d commandDispatcher) (*telegramListener, error) {
	l := &telegramListener{
		dispatcher: d,
		logger:     zap.L(),
	}
	b, err := bot.New(token, bot.WithDefaultHandler(l.handle))
	if err != nil {
		return nil, err
	}
	l.bot = b
	return l, nil
}

// Bot exposes the underlying client so the outbound sink can share it.
func (l *telegramListener) Bot() *bot.Bot {
	return l.bot
}

// Run long-polls until ctx is cancelled.
func (l *telegramListener) Run(ctx context.Context) error {
	l.logger.Info("telegram listener started")
	l.bot.Start(ctx)
	return ctx.Err()
}

func (l *telegramListener) handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	sub := model.Subscriber{
		Platform: model.PlatformTelegram,
		ChatID:   strconv.FormatInt(update.Message.Chat.ID, 10),
	}
	if update.Message.From != nil {
		sub.DisplayName = update.Message.From.Username
	}

	reply, err := l.dispatcher.Dispatch(ctx, sub, update.Message.Text)
	if err != nil && !errors.Is(err, dispatcher.ErrUnknownCommand) && !errors.Is(err, dispatcher.ErrUnknownDevice) {
		l.logger.Error("dispatch failed", zap.String("chat_id", sub.ChatID), zap.Error(err))
	}
	if reply == "" {
		return
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
	}); err != nil {
		l.logger.Error("failed to send reply", zap.String("chat_id", sub.ChatID), zap.Error(err))
	}
}
