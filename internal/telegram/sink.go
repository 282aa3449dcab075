// Package telegram adapts the Telegram Bot API to the reconcile.Sink
// contract. Destinations are chat ids as decimal strings (channel ids
// are negative).
package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noopnet/statusgram/internal/reconcile"
	"github.com/noopnet/statusgram/internal/view"
)

// Sink posts status payloads as HTML-formatted Telegram messages.
type Sink struct {
	api botAPI
}

// botAPI is the slice of *tgbotapi.BotAPI the sink uses; narrowed so
// formatting and error mapping are testable without a live token.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// New creates a [Sink] by authorizing against the Bot API with the
// given token.
func New(token string) (*Sink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &Sink{api: api}, nil
}

// Send posts a new status message and returns its message id.
func (s *Sink) Send(ctx context.Context, destination string, p view.Payload) (string, error) {
	chatID, err := parseChatID(destination)
	if err != nil {
		return "", err
	}

	msg := tgbotapi.NewMessage(chatID, formatMessage(p))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	sent, err := s.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("telegram send: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// Fetch reports the remembered message as present. The Bot API has no
// call to look a message up by id; a stale id surfaces as
// [reconcile.ErrMessageNotFound] from Edit instead, which the
// reconciler handles by sending fresh.
func (s *Sink) Fetch(ctx context.Context, destination, messageID string) error {
	if _, err := parseChatID(destination); err != nil {
		return err
	}
	if _, err := strconv.Atoi(messageID); err != nil {
		return fmt.Errorf("%w: malformed message id %q", reconcile.ErrMessageNotFound, messageID)
	}
	return nil
}

// Edit replaces the remembered message's text in place.
func (s *Sink) Edit(ctx context.Context, destination, messageID string, p view.Payload) error {
	chatID, err := parseChatID(destination)
	if err != nil {
		return err
	}
	msgID, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("%w: malformed message id %q", reconcile.ErrMessageNotFound, messageID)
	}

	edit := tgbotapi.NewEditMessageText(chatID, msgID, formatMessage(p))
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	if _, err := s.api.Send(edit); err != nil {
		return mapEditError(err)
	}
	return nil
}

// Purge is a no-op: the Bot API exposes no channel history, so there
// is nothing to bulk-delete. Stale messages from a previous run are
// avoided by persisting message ids instead.
func (s *Sink) Purge(ctx context.Context, destination string) error {
	return nil
}

// mapEditError translates Bot API error strings into the sink
// contract's sentinels. "message is not modified" means our payload
// already matches the posted message, which is a success for
// reconciliation purposes.
func mapEditError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "message to edit not found"):
		return fmt.Errorf("%w: %v", reconcile.ErrMessageNotFound, err)
	case strings.Contains(msg, "message is not modified"):
		return nil
	default:
		return fmt.Errorf("telegram edit: %w", err)
	}
}

func parseChatID(destination string) (int64, error) {
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("destination must be a numeric chat id, got %q", destination)
	}
	return chatID, nil
}

// formatMessage lays the payload out as Telegram HTML. Backend-supplied
// text (names, groups) is escaped; the accent color has no Telegram
// equivalent and is not rendered.
func formatMessage(p view.Payload) string {
	var b strings.Builder

	if p.AuthorName != "" {
		if p.Link != "" {
			fmt.Fprintf(&b, "<b><a href=\"%s\">%s</a></b>\n\n", p.Link, html.EscapeString(p.AuthorName))
		} else {
			fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(p.AuthorName))
		}
	}

	b.WriteString(bodyToHTML(p.Body))

	if p.Footer != "" {
		fmt.Fprintf(&b, "\n\n<i>%s</i>", html.EscapeString(p.Footer))
	}

	return b.String()
}

// bodyToHTML converts the renderer's *bold* markers to HTML tags,
// escaping everything between them.
func bodyToHTML(body string) string {
	var b strings.Builder
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lineToHTML(line))
	}
	return b.String()
}

func lineToHTML(line string) string {
	var b strings.Builder
	bold := false
	plain := strings.Builder{}

	flush := func() {
		b.WriteString(html.EscapeString(plain.String()))
		plain.Reset()
	}

	for _, r := range line {
		if r == '*' {
			flush()
			if bold {
				b.WriteString("</b>")
			} else {
				b.WriteString("<b>")
			}
			bold = !bold
			continue
		}
		plain.WriteRune(r)
	}
	flush()
	if bold {
		// unbalanced marker inside a monitor name; close the tag so
		// Telegram does not reject the message
		b.WriteString("</b>")
	}
	return b.String()
}
