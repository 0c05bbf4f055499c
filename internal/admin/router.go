package admin

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"

	"github.com/alkaman93/orgazm/internal/dialog"
	"github.com/alkaman93/orgazm/internal/domain"
	"github.com/alkaman93/orgazm/internal/store"
	"github.com/alkaman93/orgazm/internal/transport"
)

// bodyExcerptLen caps complaint bodies in operator-facing summaries.
// Display only; stored bodies are never truncated.
const bodyExcerptLen = 100

// Router resolves parsed operator commands against the store and routes
// replies back to the original requesters.
type Router struct {
	repo       store.Repository
	tx         transport.Transport
	owner      string
	bannerPath string
}

// NewRouter creates an operator command router.
func NewRouter(repo store.Repository, tx transport.Transport, owner, bannerPath string) *Router {
	return &Router{repo: repo, tx: tx, owner: owner, bannerPath: bannerPath}
}

// reply sends a synchronous response to the operator in the same event
// handling pass. Failures are logged; there is nobody else to tell.
func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if _, err := r.tx.SendText(ctx, chatID, text, nil); err != nil {
		slog.Warn("failed to reply to operator", "error", err)
	}
}

// Execute runs one parsed command. The caller has already verified the
// sender is the configured operator.
func (r *Router) Execute(ctx context.Context, ev transport.Event, cmd Command) error {
	switch cmd.Name {
	case CmdAnswerVerification, CmdAnswerComplaint, CmdAnswerPurchase:
		return r.answer(ctx, ev, cmd)
	case CmdApproveVerification:
		return r.verdict(ctx, ev, cmd, domain.StatusApproved)
	case CmdRejectVerification:
		return r.verdict(ctx, ev, cmd, domain.StatusRejected)
	case CmdListPending:
		return r.listPending(ctx, ev)
	case CmdStats:
		return r.stats(ctx, ev)
	case CmdSetBanner:
		r.reply(ctx, ev.ChatID, "📸 <b>Send a photo to set as the banner</b>")
		return nil
	case CmdRemoveBanner:
		return r.removeBanner(ctx, ev)
	default:
		return fmt.Errorf("unhandled command %q", cmd.Name)
	}
}

// ReplyUsage reports a malformed command back to the operator.
func (r *Router) ReplyUsage(ctx context.Context, ev transport.Event, usageErr *UsageError) {
	r.reply(ctx, ev.ChatID, fmt.Sprintf(
		"❌ <b>%s</b>\nUsage: <code>%s</code>",
		html.EscapeString(usageErr.Reason), html.EscapeString(usageErr.Usage)))
}

// answer closes a pending request with a free-text operator response.
func (r *Router) answer(ctx context.Context, ev transport.Event, cmd Command) error {
	req, err := r.repo.GetRequest(ctx, cmd.Kind, cmd.ID)
	if err != nil {
		return r.lookupFailed(ctx, ev, cmd, err)
	}

	if err := r.repo.AnswerRequest(ctx, cmd.Kind, cmd.ID, domain.StatusAnswered, cmd.Text); err != nil {
		return r.lookupFailed(ctx, ev, cmd, err)
	}

	text := fmt.Sprintf(
		"📨 <b>Reply to your request #%d</b>\n\n%s\n\n💬 %s",
		req.ID, requestSummary(req), cmd.Text,
	)
	r.deliver(ctx, req, text)
	r.reply(ctx, ev.ChatID, fmt.Sprintf("✅ <b>Answer for #%d sent to the requester</b>", req.ID))

	slog.Info("request answered", "kind", cmd.Kind, "request_id", cmd.ID)
	return nil
}

// verdict closes a pending verification with the canned vouch / no-vouch
// reply, optionally extended with the operator's own text.
func (r *Router) verdict(ctx context.Context, ev transport.Event, cmd Command, status domain.Status) error {
	req, err := r.repo.GetRequest(ctx, cmd.Kind, cmd.ID)
	if err != nil {
		return r.lookupFailed(ctx, ev, cmd, err)
	}

	var text string
	if status == domain.StatusApproved {
		text = fmt.Sprintf(
			"✅ <b>VOUCHED!</b>\n\n"+
				"@%s confirms that <b>%s</b> is trusted.\n"+
				"💰 Amount: %s %s\n\n"+
				"You can safely proceed with the deal.",
			r.owner, req.TargetHandle, dialog.FormatAmount(req.Amount), req.Currency,
		)
	} else {
		text = fmt.Sprintf(
			"❌ <b>NOT VOUCHED</b>\n\n"+
				"@%s does NOT confirm <b>%s</b>.\n\n"+
				"Be careful!",
			r.owner, req.TargetHandle,
		)
	}
	if cmd.Text != "" {
		text += "\n\n💬 " + cmd.Text
	}

	if err := r.repo.AnswerRequest(ctx, cmd.Kind, cmd.ID, status, text); err != nil {
		return r.lookupFailed(ctx, ev, cmd, err)
	}

	r.deliver(ctx, req, text)
	r.reply(ctx, ev.ChatID, fmt.Sprintf("✅ <b>Verdict for #%d sent to the requester</b>", req.ID))

	slog.Info("verification decided", "request_id", cmd.ID, "status", status)
	return nil
}

// lookupFailed maps store errors to operator replies. Not-found and
// already-handled are expected outcomes, not failures.
func (r *Router) lookupFailed(ctx context.Context, ev transport.Event, cmd Command, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.reply(ctx, ev.ChatID, fmt.Sprintf("❌ <b>No %s request #%d</b>", cmd.Kind, cmd.ID))
		return nil
	case errors.Is(err, store.ErrAlreadyHandled):
		r.reply(ctx, ev.ChatID, fmt.Sprintf("❌ <b>Request #%d was already handled</b>", cmd.ID))
		return nil
	default:
		r.reply(ctx, ev.ChatID, "⚠️ <b>Storage error, try again later</b>")
		return fmt.Errorf("resolve %s %d: %w", cmd.Kind, cmd.ID, err)
	}
}

// deliver sends the operator's response to the original requester. A
// delivery failure is logged and does not undo the status change: the
// request is administratively closed once the operator has acted.
func (r *Router) deliver(ctx context.Context, req *domain.Request, text string) {
	if _, err := r.tx.SendText(ctx, req.RequesterID, text, nil); err != nil {
		slog.Warn("failed to deliver operator response",
			"request_id", req.ID, "kind", req.Kind, "user_id", req.RequesterID, "error", err)
	}
}

// requestSummary is the one-line recap shown to the requester alongside the
// operator's response.
func requestSummary(req *domain.Request) string {
	switch req.Kind {
	case domain.KindVerification:
		return fmt.Sprintf("❓ Vouch check for %s, %s %s",
			req.TargetHandle, dialog.FormatAmount(req.Amount), req.Currency)
	case domain.KindComplaint:
		return "⚠️ Complaint: " + excerpt(req.Body)
	default:
		return fmt.Sprintf("💼 Vouch purchase, %s %s",
			dialog.FormatAmount(req.Amount), req.Currency)
	}
}

func excerpt(body string) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= bodyExcerptLen {
		return string(runes)
	}
	return string(runes[:bodyExcerptLen]) + "…"
}

// listPending renders all pending requests across the three kinds, newest
// id first within each kind.
func (r *Router) listPending(ctx context.Context, ev transport.Event) error {
	sections := []struct {
		kind  domain.Kind
		title string
	}{
		{domain.KindVerification, "⏳ <b>Pending vouch requests:</b>"},
		{domain.KindComplaint, "⚠️ <b>Pending complaints:</b>"},
		{domain.KindPurchase, "💰 <b>Pending purchase requests:</b>"},
	}

	var b strings.Builder
	total := 0
	for _, sec := range sections {
		reqs, err := r.repo.ListPending(ctx, sec.kind)
		if err != nil {
			r.reply(ctx, ev.ChatID, "⚠️ <b>Storage error, try again later</b>")
			return fmt.Errorf("list pending %s: %w", sec.kind, err)
		}
		if len(reqs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sec.title + "\n")
		for _, req := range reqs {
			b.WriteString(pendingLine(req) + "\n")
		}
		total += len(reqs)
	}

	if total == 0 {
		r.reply(ctx, ev.ChatID, "✅ <b>No pending requests</b>")
		return nil
	}
	r.reply(ctx, ev.ChatID, b.String())
	return nil
}

func pendingLine(req *domain.Request) string {
	from := "@" + req.RequesterHandle
	if req.RequesterHandle == "" {
		from = fmt.Sprintf("ID %d", req.RequesterID)
	}
	when := req.CreatedAt.Format("02.01.2006 15:04")

	switch req.Kind {
	case domain.KindVerification:
		return fmt.Sprintf("<b>#%d</b> | %s | %s → <b>%s %s</b> | %s",
			req.ID, from, req.TargetHandle, dialog.FormatAmount(req.Amount), req.Currency, when)
	case domain.KindComplaint:
		return fmt.Sprintf("<b>#%d</b> | %s | %s | %s",
			req.ID, from, excerpt(req.Body), when)
	default:
		return fmt.Sprintf("<b>#%d</b> | %s | <b>%s %s</b> | %s",
			req.ID, from, dialog.FormatAmount(req.Amount), req.Currency, when)
	}
}

// stats renders the admin summary view with counts and the command list.
func (r *Router) stats(ctx context.Context, ev transport.Event) error {
	users, err := r.repo.CountUsers(ctx)
	if err != nil {
		r.reply(ctx, ev.ChatID, "⚠️ <b>Storage error, try again later</b>")
		return fmt.Errorf("count users: %w", err)
	}

	counts := make(map[domain.Kind]int64, 3)
	for _, kind := range []domain.Kind{domain.KindVerification, domain.KindComplaint, domain.KindPurchase} {
		n, err := r.repo.CountPending(ctx, kind)
		if err != nil {
			r.reply(ctx, ev.ChatID, "⚠️ <b>Storage error, try again later</b>")
			return fmt.Errorf("count pending %s: %w", kind, err)
		}
		counts[kind] = n
	}

	r.reply(ctx, ev.ChatID, fmt.Sprintf(
		"👑 <b>Admin panel</b>\n\n"+
			"📊 <b>Stats:</b>\n"+
			"👥 Users: <b>%d</b>\n"+
			"⏳ Pending vouches: <b>%d</b>\n"+
			"⚠️ Pending complaints: <b>%d</b>\n"+
			"💰 Pending purchases: <b>%d</b>\n\n"+
			"📋 <b>Commands:</b>\n"+
			"<code>list-pending</code>\n"+
			"<code>answer-verification &lt;id&gt; &lt;text&gt;</code>\n"+
			"<code>approve-verification &lt;id&gt; [text]</code>\n"+
			"<code>reject-verification &lt;id&gt; [text]</code>\n"+
			"<code>answer-complaint &lt;id&gt; &lt;text&gt;</code>\n"+
			"<code>answer-purchase &lt;id&gt; &lt;text&gt;</code>\n"+
			"<code>setbanner</code> / <code>removebanner</code>",
		users, counts[domain.KindVerification], counts[domain.KindComplaint], counts[domain.KindPurchase],
	))
	return nil
}

// SetBannerFromPhoto downloads an operator-sent photo to the configured
// banner path. New chats will see it; existing banners are replaced on the
// next menu render.
func (r *Router) SetBannerFromPhoto(ctx context.Context, ev transport.Event) error {
	if err := r.tx.DownloadFile(ctx, ev.PhotoFileID, r.bannerPath); err != nil {
		r.reply(ctx, ev.ChatID, "❌ <b>Failed to save the banner</b>")
		return fmt.Errorf("save banner: %w", err)
	}
	r.reply(ctx, ev.ChatID, "✅ <b>Banner installed</b>")
	slog.Info("banner updated", "path", r.bannerPath)
	return nil
}

func (r *Router) removeBanner(ctx context.Context, ev transport.Event) error {
	if err := os.Remove(r.bannerPath); err != nil {
		if os.IsNotExist(err) {
			r.reply(ctx, ev.ChatID, "❌ <b>No banner is set</b>")
			return nil
		}
		r.reply(ctx, ev.ChatID, "❌ <b>Failed to remove the banner</b>")
		return fmt.Errorf("remove banner: %w", err)
	}
	r.reply(ctx, ev.ChatID, "✅ <b>Banner removed</b>")
	return nil
}
