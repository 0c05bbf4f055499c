package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Telegram implements Transport over the Telegram Bot API with long polling.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram authenticates against the Bot API.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	slog.Info("Telegram transport ready", "bot_username", api.Self.UserName)
	return &Telegram{api: api}, nil
}

func toMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SendText sends an HTML-formatted text message.
func (t *Telegram) SendText(_ context.Context, chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = toMarkup(kb)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendImage sends a local image file as a photo.
func (t *Telegram) SendImage(_ context.Context, chatID int64, path string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	sent, err := t.api.Send(photo)
	if err != nil {
		return 0, fmt.Errorf("send photo to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// DeleteMessage removes a previously sent message.
func (t *Telegram) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

// AckCallback acknowledges a callback query.
func (t *Telegram) AckCallback(_ context.Context, callbackID string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("ack callback: %w", err)
	}
	return nil
}

// DownloadFile fetches a Telegram-hosted file to a local path.
func (t *Telegram) DownloadFile(ctx context.Context, fileID, destPath string) error {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.api.Token), nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file %s: unexpected status %s", fileID, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

// Updates starts long polling and returns the normalized event stream.
func (t *Telegram) Updates(ctx context.Context) <-chan Event {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	raw := t.api.GetUpdatesChan(cfg)

	events := make(chan Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				t.api.StopReceivingUpdates()
				return
			case upd, ok := <-raw:
				if !ok {
					return
				}
				ev, ok := normalize(upd)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					t.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return events
}

// normalize converts a raw update into an Event. Updates that are neither
// messages nor callback queries are dropped.
func normalize(upd tgbotapi.Update) (Event, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		ev := Event{
			ID:         uuid.NewString(),
			UserID:     cb.From.ID,
			ChatID:     cb.From.ID,
			Username:   cb.From.UserName,
			FirstName:  cb.From.FirstName,
			Callback:   cb.Data,
			CallbackID: cb.ID,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
		}
		return ev, true
	case upd.Message != nil:
		msg := upd.Message
		if msg.From == nil {
			return Event{}, false
		}
		ev := Event{
			ID:        uuid.NewString(),
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			Text:      msg.Text,
		}
		if msg.IsCommand() {
			ev.Command = msg.Command()
		}
		if len(msg.Photo) > 0 {
			ev.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		}
		return ev, true
	default:
		return Event{}, false
	}
}
