// Package telegram connects the chat handler to the Telegram Bot API with
// long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"financas/internal/chat"
)

const (
	pollTimeout  = 30
	maxTextLen   = 4096
	queuePerChat = 64
)

// MessageHandler is implemented by *chat.Handler.
type MessageHandler interface {
	Handle(ctx context.Context, m chat.Message) chat.Reply
}

// Sender is the part of *tgbotapi.BotAPI used to answer.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	handler MessageHandler
	workers int
}

func New(token string, handler MessageHandler, workers int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("Authorized on Telegram", "bot", api.Self.UserName)
	return &Bot{api: api, sender: api, handler: handler, workers: workers}, nil
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// messages to be answered.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	d := NewDispatcher(b.workers, queuePerChat, b.process)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	slog.InfoContext(ctx, "Polling Telegram updates", "workers", b.workers)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			m, ok := toMessage(update)
			if !ok {
				continue
			}
			if !d.Dispatch(ctx, m.ChatID, m) {
				break loop
			}
		}
	}

	b.api.StopReceivingUpdates()
	d.Close()
	return <-done
}

func (b *Bot) process(ctx context.Context, m chat.Message) {
	// Answer even during shutdown so queued users are not left hanging.
	ctx = context.WithoutCancel(ctx)
	reply := b.handler.Handle(ctx, m)
	if err := b.send(m.ChatID, reply); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "chat_id", m.ChatID, "error", err)
	}
}

func toMessage(u tgbotapi.Update) (chat.Message, bool) {
	msg := u.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return chat.Message{}, false
	}
	m := chat.Message{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.From != nil {
		m.UserID = msg.From.ID
		m.UserName = msg.From.FirstName
	}
	if m.UserID == 0 {
		m.UserID = msg.Chat.ID
	}
	return m, true
}

func (b *Bot) send(chatID int64, r chat.Reply) error {
	for _, c := range chattables(chatID, r) {
		if _, err := b.sender.Send(c); err != nil {
			plain, ok := withoutMarkdown(c)
			if !ok {
				return err
			}
			slog.Warn("Markdown reply rejected, resending as plain text", "chat_id", chatID, "error", err)
			if _, err := b.sender.Send(plain); err != nil {
				return err
			}
		}
	}
	return nil
}

// chattables converts a reply into Telegram requests. Long texts are split;
// the keyboard rides on the last part.
func chattables(chatID int64, r chat.Reply) []tgbotapi.Chattable {
	markup := keyboardMarkup(r.Keyboard, r.OneTime)

	if a := r.Attachment; a != nil {
		file := tgbotapi.FileBytes{Name: a.FileName, Bytes: a.Data}
		if a.Kind == chat.Photo {
			p := tgbotapi.NewPhoto(chatID, file)
			p.Caption = a.Caption
			if markup != nil {
				p.ReplyMarkup = *markup
			}
			return []tgbotapi.Chattable{p}
		}
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = a.Caption
		if markup != nil {
			doc.ReplyMarkup = *markup
		}
		return []tgbotapi.Chattable{doc}
	}

	parts := splitText(r.Text, maxTextLen)
	out := make([]tgbotapi.Chattable, 0, len(parts))
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if r.Markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if i == len(parts)-1 && markup != nil {
			msg.ReplyMarkup = *markup
		}
		out = append(out, msg)
	}
	return out
}

func withoutMarkdown(c tgbotapi.Chattable) (tgbotapi.Chattable, bool) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok || msg.ParseMode == "" {
		return nil, false
	}
	msg.ParseMode = ""
	return msg, true
}

func keyboardMarkup(kb chat.Keyboard, oneTime bool) *tgbotapi.ReplyKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = oneTime
	return &markup
}

// splitText cuts s into parts of at most limit bytes, preferring line
// breaks. An empty s yields a single empty part.
func splitText(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}
	var parts []string
	for len(s) > limit {
		cut := strings.LastIndexByte(s[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		parts = append(parts, s[:cut])
		s = strings.TrimPrefix(s[cut:], "\n")
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
