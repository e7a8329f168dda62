// Package telegram adapts a Telegram bot into the logx alert sender so
// warn+ events reach the operator's chat without touching the WhatsApp
// session.
package telegram

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"hearingbot/internal/config"
	"hearingbot/pkg/logx"
)

var _ logx.Sender = (*Alerter)(nil)

type Alerter struct {
	bot    *tele.Bot
	chatID int64
}

// New builds the alert sender. Returns (nil, nil) when the channel is
// disabled so callers can wire it unconditionally.
func New(cfg config.AlertTelegram) (*Alerter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram alerts enabled but token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram alerts enabled but chat_id is not set")
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: nil, // send-only
	})
	if err != nil {
		return nil, err
	}
	return &Alerter{bot: bot, chatID: cfg.ChatID}, nil
}

// SendText implements logx.Sender.
func (a *Alerter) SendText(text string) error {
	if a == nil {
		return nil
	}
	_, err := a.bot.Send(tele.ChatID(a.chatID), text, &tele.SendOptions{
		DisableWebPagePreview: true,
	})
	return err
}
