// Package bot routes inbound transport events to the menu, the dialogue
// controllers and the operator command router.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alkaman93/orgazm/internal/admin"
	"github.com/alkaman93/orgazm/internal/dialog"
	"github.com/alkaman93/orgazm/internal/dispatch"
	"github.com/alkaman93/orgazm/internal/domain"
	"github.com/alkaman93/orgazm/internal/menu"
	"github.com/alkaman93/orgazm/internal/session"
	"github.com/alkaman93/orgazm/internal/store"
	"github.com/alkaman93/orgazm/internal/transport"
)

// Bot is the top-level event router.
type Bot struct {
	adminID  int64
	repo     store.Repository
	tx       transport.Transport
	sessions *session.Manager
	dialogs  *dialog.Controller
	menu     *menu.Renderer
	operator *admin.Router
	disp     *dispatch.Dispatcher
}

// New wires the bot together.
func New(adminID int64, repo store.Repository, tx transport.Transport,
	sessions *session.Manager, dialogs *dialog.Controller,
	renderer *menu.Renderer, operator *admin.Router) *Bot {
	return &Bot{
		adminID:  adminID,
		repo:     repo,
		tx:       tx,
		sessions: sessions,
		dialogs:  dialogs,
		menu:     renderer,
		operator: operator,
		disp:     dispatch.New(),
	}
}

// Run consumes the transport's update stream until the context is
// cancelled. Events are serialized per user identity; events from
// different users are handled concurrently.
func (b *Bot) Run(ctx context.Context) {
	for ev := range b.tx.Updates(ctx) {
		ev := ev
		b.disp.Submit(ev.UserID, func() {
			b.Handle(ctx, ev)
		})
	}
	b.disp.Wait()
}

// Handle processes one inbound event to completion.
func (b *Bot) Handle(ctx context.Context, ev transport.Event) {
	var err error
	switch {
	case ev.CallbackID != "" || ev.Callback != "":
		err = b.handleCallback(ctx, ev)
	case ev.UserID == b.adminID:
		err = b.handleOperator(ctx, ev)
	default:
		err = b.handleUser(ctx, ev)
	}
	if err != nil {
		slog.Error("event handling failed", "event_id", ev.ID, "user_id", ev.UserID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, ev transport.Event) error {
	if ev.CallbackID != "" {
		if err := b.tx.AckCallback(ctx, ev.CallbackID); err != nil {
			slog.Debug("failed to ack callback", "event_id", ev.ID, "error", err)
		}
	}

	s := b.sessions.Get(ev.UserID)
	switch ev.Callback {
	case menu.CallbackMenu:
		// Back to menu always discards in-progress dialogue state.
		s.Clear()
		return b.menu.ShowMain(ctx, s, ev.ChatID)
	case menu.CallbackInfo:
		return b.menu.ShowInfo(ctx, ev.ChatID)
	case menu.CallbackVerify:
		return b.dialogs.Start(ctx, s, ev.ChatID, domain.DialogueVerification)
	case menu.CallbackComplaint:
		return b.dialogs.Start(ctx, s, ev.ChatID, domain.DialogueComplaint)
	case menu.CallbackPurchase:
		return b.dialogs.Start(ctx, s, ev.ChatID, domain.DialoguePurchase)
	default:
		slog.Debug("ignoring unknown callback", "event_id", ev.ID, "data", ev.Callback)
		return nil
	}
}

func (b *Bot) handleUser(ctx context.Context, ev transport.Event) error {
	if ev.Command == "start" {
		return b.start(ctx, ev)
	}
	if ev.Command == "admin" {
		// Never reveal whether pending data exists.
		_, err := b.tx.SendText(ctx, ev.ChatID, "❌ <b>No access</b>", nil)
		return err
	}

	s := b.sessions.Get(ev.UserID)
	if s.Active() && ev.Text != "" {
		return b.dialogs.HandleInput(ctx, s, ev)
	}

	slog.Debug("ignoring message outside any dialogue", "event_id", ev.ID, "user_id", ev.UserID)
	return nil
}

func (b *Bot) handleOperator(ctx context.Context, ev transport.Event) error {
	switch {
	case ev.Command == "start":
		return b.start(ctx, ev)
	case ev.Command == "admin":
		return b.operator.Execute(ctx, ev, admin.Command{Name: admin.CmdStats})
	case ev.PhotoFileID != "":
		return b.operator.SetBannerFromPhoto(ctx, ev)
	}

	cmd, err := admin.Parse(ev.Text)
	switch {
	case err == nil:
		return b.operator.Execute(ctx, ev, cmd)
	case errors.Is(err, admin.ErrUnknown):
		// Not a command; the operator may be in a dialogue like anyone else.
		return b.handleUser(ctx, ev)
	default:
		var usageErr *admin.UsageError
		if errors.As(err, &usageErr) {
			b.operator.ReplyUsage(ctx, ev, usageErr)
			return nil
		}
		return err
	}
}

// start registers the user on first contact and renders the menu. Any
// dialogue in progress is discarded, same as the back-to-menu action.
func (b *Bot) start(ctx context.Context, ev transport.Event) error {
	user := &domain.User{
		ID:           ev.UserID,
		Username:     ev.Username,
		FirstName:    ev.FirstName,
		RegisteredAt: time.Now(),
	}
	if err := b.repo.UpsertUser(ctx, user); err != nil {
		slog.Warn("failed to register user", "user_id", ev.UserID, "error", err)
	}

	s := b.sessions.Get(ev.UserID)
	s.Clear()
	return b.menu.ShowMain(ctx, s, ev.ChatID)
}
