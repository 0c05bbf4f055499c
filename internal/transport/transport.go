// Package transport abstracts the chat transport the bot runs on.
package transport

import "context"

// Button is one inline keyboard button. Data is the opaque callback payload
// returned in the Callback field of the resulting event.
type Button struct {
	Label string
	Data  string
}

// Keyboard is a grid of buttons attached to an outbound message.
// A nil Keyboard sends the message without one.
type Keyboard [][]Button

// Row builds a single-button keyboard row.
func Row(label, data string) []Button {
	return []Button{{Label: label, Data: data}}
}

// Event is one inbound update, normalized away from the concrete transport.
// Exactly one of Text, Callback or PhotoFileID carries the payload.
type Event struct {
	// ID is a per-event identifier used for log correlation only.
	ID string

	UserID    int64
	ChatID    int64
	Username  string
	FirstName string

	// Text is the message text. For bot commands ("/start") Command holds
	// the bare command name and Text the full line.
	Text    string
	Command string

	// Callback is the button payload of a callback event; CallbackID is the
	// transport handle used to acknowledge it.
	Callback   string
	CallbackID string

	// PhotoFileID references the largest size of an attached photo.
	PhotoFileID string
}

// Sender delivers outbound messages. Message ids are transport-scoped and
// only meaningful for a later DeleteMessage on the same chat.
type Sender interface {
	// SendText sends a text message, optionally with an inline keyboard.
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)

	// SendImage sends a local image file.
	SendImage(ctx context.Context, chatID int64, path string) (int, error)

	// DeleteMessage removes a previously sent message. Best-effort.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Transport is the full collaborator contract consumed by the bot.
type Transport interface {
	Sender

	// AckCallback acknowledges a callback event so the client stops showing
	// a progress indicator. Best-effort.
	AckCallback(ctx context.Context, callbackID string) error

	// DownloadFile fetches a transport-hosted file to a local path.
	DownloadFile(ctx context.Context, fileID, destPath string) error

	// Updates returns the inbound event stream. The channel closes when the
	// context is cancelled or the transport shuts down.
	Updates(ctx context.Context) <-chan Event
}
