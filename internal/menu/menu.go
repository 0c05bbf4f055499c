// Package menu renders the top-level navigation and owns the banner
// lifecycle: at most one banner message is live per chat at a time.
package menu

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alkaman93/orgazm/internal/domain"
	"github.com/alkaman93/orgazm/internal/transport"
)

// Callback payloads for the inline menu buttons.
const (
	CallbackVerify    = "vouch_check"
	CallbackComplaint = "complaint"
	CallbackPurchase  = "buy_vouch"
	CallbackInfo      = "info"
	CallbackMenu      = "back_to_menu"
)

// Renderer sends the menu and info views.
type Renderer struct {
	sender     transport.Sender
	bannerPath string
	owner      string
	botHandle  string
}

// NewRenderer creates a menu renderer. owner and botHandle appear in the
// menu and info texts.
func NewRenderer(sender transport.Sender, bannerPath, owner, botHandle string) *Renderer {
	return &Renderer{
		sender:     sender,
		bannerPath: bannerPath,
		owner:      owner,
		botHandle:  botHandle,
	}
}

// BackKeyboard is the single back-to-menu button attached to every dialogue
// step and info view.
func BackKeyboard() transport.Keyboard {
	return transport.Keyboard{transport.Row("🔙 Back to menu", CallbackMenu)}
}

// ShowMain deletes the previous banner for the chat (best-effort), sends a
// fresh one if a banner image exists, and renders the top-level menu.
func (r *Renderer) ShowMain(ctx context.Context, s *domain.Session, chatID int64) error {
	r.sendBanner(ctx, s, chatID)

	text := fmt.Sprintf(
		"👋 <b>Welcome!</b>\n\n"+
			"This is the only official vouch service run by <b>@%s</b>.\n\n"+
			"‼️ Beware of fakes — the official bot is <b>@%s</b>.\n\n"+
			"👇 <b>Choose an action:</b>",
		r.owner, r.botHandle,
	)

	kb := transport.Keyboard{
		transport.Row("❓ Check a vouch", CallbackVerify),
		transport.Row("⚠️ File a complaint", CallbackComplaint),
		transport.Row("💼 Buy a vouch", CallbackPurchase),
		transport.Row("ℹ️ Information", CallbackInfo),
	}

	if _, err := r.sender.SendText(ctx, chatID, text, kb); err != nil {
		return fmt.Errorf("render menu: %w", err)
	}
	return nil
}

// ShowInfo renders the static about view.
func (r *Renderer) ShowInfo(ctx context.Context, chatID int64) error {
	text := fmt.Sprintf(
		"ℹ️ <b>About this bot</b>\n\n"+
			"🤝 The only official vouch service run by <b>@%s</b>.\n\n"+
			"❓ <b>How to check a vouch:</b>\n"+
			"1. Tap «Check a vouch»\n"+
			"2. Enter the person's @username\n"+
			"3. Enter the deal amount\n"+
			"4. Enter the currency\n"+
			"5. Wait for @%s to reply\n\n"+
			"✅ A confirmed vouch means the person is trusted.\n"+
			"❌ If you got scammed, file a complaint with full proof.\n\n"+
			"‼️ Beware of fakes — the official bot is <b>@%s</b>.",
		r.owner, r.owner, r.botHandle,
	)

	if _, err := r.sender.SendText(ctx, chatID, text, BackKeyboard()); err != nil {
		return fmt.Errorf("render info: %w", err)
	}
	return nil
}

// sendBanner replaces the chat's live banner. A missing image file is a
// no-op; a failed delete of the previous banner is swallowed.
func (r *Renderer) sendBanner(ctx context.Context, s *domain.Session, chatID int64) {
	if s.BannerMessageID != 0 {
		if err := r.sender.DeleteMessage(ctx, chatID, s.BannerMessageID); err != nil {
			slog.Debug("failed to delete previous banner", "chat_id", chatID, "error", err)
		}
		s.BannerMessageID = 0
	}

	if _, err := os.Stat(r.bannerPath); err != nil {
		return
	}

	msgID, err := r.sender.SendImage(ctx, chatID, r.bannerPath)
	if err != nil {
		slog.Warn("failed to send banner", "chat_id", chatID, "error", err)
		return
	}
	s.BannerMessageID = msgID
}
