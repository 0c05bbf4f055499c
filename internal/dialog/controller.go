// Package dialog drives the multi-step request dialogues. Each dialogue is
// a fixed ordered sequence of steps described by an explicit transition
// table; invalid input re-prompts the same step without touching session
// state.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alkaman93/orgazm/internal/domain"
	"github.com/alkaman93/orgazm/internal/menu"
	"github.com/alkaman93/orgazm/internal/store"
	"github.com/alkaman93/orgazm/internal/transport"
)

// MinPurchaseAmount is the smallest deposit accepted for a purchase.
const MinPurchaseAmount = 100

// Payment holds the deposit details shown in the purchase confirmation.
type Payment struct {
	TONWallet  string
	CardNumber string
	CardHolder string
	BankName   string
}

// Controller runs the three dialogues and turns completed ones into
// pending request records.
type Controller struct {
	repo    store.Repository
	sender  transport.Sender
	adminID int64
	owner   string
	payment Payment
}

// NewController wires a controller to its store and transport.
func NewController(repo store.Repository, sender transport.Sender, adminID int64, owner string, payment Payment) *Controller {
	return &Controller{
		repo:    repo,
		sender:  sender,
		adminID: adminID,
		owner:   owner,
		payment: payment,
	}
}

const (
	promptTarget = "❓ <b>Vouch check</b>\n\n" +
		"Enter the person's @username:\n" +
		"👉 For example: @durov"
	promptAmount = "💰 <b>Enter the deal amount:</b>\n" +
		"👉 Numbers only, for example: 500"
	promptCurrency = "💱 <b>Enter the currency:</b>\n" +
		"👉 For example: $, €, ₽, UAH, TON"
	promptComplaint = "⚠️ <b>Filing a complaint</b>\n\n" +
		"📝 Describe the situation in detail:\n" +
		"• who scammed you (@username)\n" +
		"• the amount\n" +
		"• what was promised and what you got\n" +
		"• links to screenshots"
	promptPurchaseAmount = "💼 <b>Buying a vouch</b>\n\n" +
		"💰 Enter the amount you want to deposit:\n" +
		"👉 Numbers only, for example: 1000"

	msgBadAmount    = "❌ <b>Enter a number (digits only)</b>"
	msgEmptyTarget  = "❌ <b>Enter a @username</b>"
	msgEmptyBody    = "❌ <b>The complaint text cannot be empty</b>"
	msgStoreFailure = "⚠️ <b>Something went wrong. Please try again later.</b>"
)

var msgMinPurchase = fmt.Sprintf("❌ <b>The minimum amount is %d</b>", MinPurchaseAmount)

// transition is one row of the dialogue step table: how the raw input is
// validated and stored, and what follows on success. apply returns a
// re-prompt message on validation failure and must leave the session
// untouched in that case.
type transition struct {
	apply  func(s *domain.Session, input string) string
	next   domain.Step
	prompt string
	final  bool
}

func parseAmount(input string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var transitions = map[domain.Step]transition{
	domain.StepVerificationTarget: {
		apply: func(s *domain.Session, input string) string {
			target := strings.TrimSpace(input)
			if target == "" {
				return msgEmptyTarget
			}
			if !strings.HasPrefix(target, "@") {
				target = "@" + target
			}
			s.Target = target
			return ""
		},
		next:   domain.StepVerificationAmount,
		prompt: promptAmount,
	},
	domain.StepVerificationAmount: {
		apply: func(s *domain.Session, input string) string {
			v, ok := parseAmount(input)
			if !ok {
				return msgBadAmount
			}
			s.Amount = v
			return ""
		},
		next:   domain.StepVerificationCurrency,
		prompt: promptCurrency,
	},
	domain.StepVerificationCurrency: {
		apply: func(s *domain.Session, input string) string {
			currency := strings.TrimSpace(input)
			if currency == "" {
				return promptCurrency
			}
			s.Currency = currency
			return ""
		},
		final: true,
	},
	domain.StepComplaintBody: {
		apply: func(s *domain.Session, input string) string {
			if strings.TrimSpace(input) == "" {
				return msgEmptyBody
			}
			s.Body = input
			return ""
		},
		final: true,
	},
	domain.StepPurchaseAmount: {
		apply: func(s *domain.Session, input string) string {
			v, ok := parseAmount(input)
			if !ok {
				return msgBadAmount
			}
			if v < MinPurchaseAmount {
				return msgMinPurchase
			}
			s.Amount = v
			return ""
		},
		next:   domain.StepPurchaseCurrency,
		prompt: promptCurrency,
	},
	domain.StepPurchaseCurrency: {
		apply: func(s *domain.Session, input string) string {
			currency := strings.TrimSpace(input)
			if currency == "" {
				return promptCurrency
			}
			s.Currency = currency
			return ""
		},
		final: true,
	},
}

// firstStep maps a dialogue to its entry step and prompt.
var firstStep = map[domain.Dialogue]struct {
	step   domain.Step
	prompt string
}{
	domain.DialogueVerification: {domain.StepVerificationTarget, promptTarget},
	domain.DialogueComplaint:    {domain.StepComplaintBody, promptComplaint},
	domain.DialoguePurchase:     {domain.StepPurchaseAmount, promptPurchaseAmount},
}

// Start begins a dialogue, discarding any partially collected fields from a
// previous one, and sends the first prompt.
func (c *Controller) Start(ctx context.Context, s *domain.Session, chatID int64, d domain.Dialogue) error {
	entry, ok := firstStep[d]
	if !ok {
		return fmt.Errorf("unknown dialogue %q", d)
	}

	s.Clear()
	s.Dialogue = d
	s.Step = entry.step

	if _, err := c.sender.SendText(ctx, chatID, entry.prompt, menu.BackKeyboard()); err != nil {
		return fmt.Errorf("send %s prompt: %w", d, err)
	}
	return nil
}

// HandleInput processes one message for the session's current step.
func (c *Controller) HandleInput(ctx context.Context, s *domain.Session, ev transport.Event) error {
	tr, ok := transitions[s.Step]
	if !ok {
		return fmt.Errorf("no transition for step %d", s.Step)
	}

	if reprompt := tr.apply(s, ev.Text); reprompt != "" {
		if _, err := c.sender.SendText(ctx, ev.ChatID, reprompt, menu.BackKeyboard()); err != nil {
			return fmt.Errorf("send re-prompt: %w", err)
		}
		return nil
	}

	if !tr.final {
		s.Step = tr.next
		if _, err := c.sender.SendText(ctx, ev.ChatID, tr.prompt, menu.BackKeyboard()); err != nil {
			return fmt.Errorf("send next prompt: %w", err)
		}
		return nil
	}

	return c.complete(ctx, s, ev)
}

// complete persists the collected fields as a pending request, resets the
// session, confirms to the requester and notifies the operator. The record
// is durable before the operator hears about it; either notification
// failing is logged, never rolled back.
func (c *Controller) complete(ctx context.Context, s *domain.Session, ev transport.Event) error {
	req := &domain.Request{
		RequesterID:     ev.UserID,
		RequesterHandle: ev.Username,
		Status:          domain.StatusPending,
		CreatedAt:       time.Now(),
	}
	switch s.Dialogue {
	case domain.DialogueVerification:
		req.Kind = domain.KindVerification
		req.TargetHandle = s.Target
		req.Amount = s.Amount
		req.Currency = s.Currency
	case domain.DialogueComplaint:
		req.Kind = domain.KindComplaint
		req.Body = s.Body
	case domain.DialoguePurchase:
		req.Kind = domain.KindPurchase
		req.Amount = s.Amount
		req.Currency = s.Currency
	default:
		return fmt.Errorf("session in step %d without a dialogue", s.Step)
	}

	id, err := c.repo.InsertRequest(ctx, req)
	if err != nil {
		s.Clear()
		if _, sendErr := c.sender.SendText(ctx, ev.ChatID, msgStoreFailure, menu.BackKeyboard()); sendErr != nil {
			slog.Warn("failed to deliver store-failure reply", "user_id", ev.UserID, "error", sendErr)
		}
		return fmt.Errorf("persist %s request: %w", req.Kind, err)
	}
	req.ID = id
	s.Clear()

	if _, err := c.sender.SendText(ctx, ev.ChatID, c.confirmation(req), menu.BackKeyboard()); err != nil {
		slog.Warn("failed to deliver confirmation", "user_id", ev.UserID, "request_id", id, "error", err)
	}

	if _, err := c.sender.SendText(ctx, c.adminID, c.notification(req), nil); err != nil {
		slog.Warn("failed to notify operator", "request_id", id, "kind", req.Kind, "error", err)
	}

	slog.Info("request created", "kind", req.Kind, "request_id", id, "user_id", ev.UserID)
	return nil
}

// FormatAmount renders an amount exactly as parsed, without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Controller) confirmation(req *domain.Request) string {
	switch req.Kind {
	case domain.KindVerification:
		return fmt.Sprintf(
			"✅ <b>Request #%d sent!</b>\n\n"+
				"📋 <b>Details:</b>\n"+
				"• Person: <b>%s</b>\n"+
				"• Amount: <b>%s %s</b>\n\n"+
				"⏳ Wait for a reply from @%s.",
			req.ID, req.TargetHandle, FormatAmount(req.Amount), req.Currency, c.owner,
		)
	case domain.KindComplaint:
		return fmt.Sprintf(
			"✅ <b>Complaint #%d filed!</b>\n\n"+
				"📨 @%s will review it shortly.\n\n"+
				"⚠️ If the scam is confirmed, you will be refunded in full.",
			req.ID, c.owner,
		)
	default:
		text := fmt.Sprintf(
			"✅ <b>Request #%d accepted!</b>\n\n"+
				"💰 Amount: <b>%s %s</b>\n",
			req.ID, FormatAmount(req.Amount), req.Currency,
		)
		if c.payment.TONWallet != "" {
			text += fmt.Sprintf("\n💎 TON: <code>%s</code>", c.payment.TONWallet)
		}
		if c.payment.CardNumber != "" {
			text += fmt.Sprintf("\n💳 Card: <code>%s</code> (%s, %s)",
				c.payment.CardNumber, c.payment.CardHolder, c.payment.BankName)
		}
		text += fmt.Sprintf("\n\n📨 Message @%s directly after paying.", c.owner)
		return text
	}
}

func (c *Controller) notification(req *domain.Request) string {
	from := fmt.Sprintf("@%s (ID: %d)", req.RequesterHandle, req.RequesterID)
	if req.RequesterHandle == "" {
		from = fmt.Sprintf("ID: %d", req.RequesterID)
	}
	when := req.CreatedAt.Format("02.01.2006 15:04")

	switch req.Kind {
	case domain.KindVerification:
		return fmt.Sprintf(
			"🔔 <b>NEW VOUCH REQUEST</b> #%d\n\n"+
				"👤 From: %s\n"+
				"🎯 Check: %s\n"+
				"💰 Amount: %s %s\n"+
				"📅 Time: %s\n\n"+
				"To reply:\n"+
				"<code>answer-verification %d &lt;text&gt;</code>\n"+
				"<code>approve-verification %d</code> / <code>reject-verification %d</code>",
			req.ID, from, req.TargetHandle, FormatAmount(req.Amount), req.Currency, when,
			req.ID, req.ID, req.ID,
		)
	case domain.KindComplaint:
		return fmt.Sprintf(
			"⚠️ <b>NEW COMPLAINT</b> #%d\n\n"+
				"👤 From: %s\n"+
				"📝 Text:\n%s\n"+
				"📅 Time: %s\n\n"+
				"To reply:\n"+
				"<code>answer-complaint %d &lt;text&gt;</code>",
			req.ID, from, req.Body, when, req.ID,
		)
	default:
		return fmt.Sprintf(
			"💰 <b>NEW PURCHASE REQUEST</b> #%d\n\n"+
				"👤 From: %s\n"+
				"💰 Amount: %s %s\n"+
				"📅 Time: %s\n\n"+
				"To reply:\n"+
				"<code>answer-purchase %d &lt;text&gt;</code>",
			req.ID, from, FormatAmount(req.Amount), req.Currency, when, req.ID,
		)
	}
}
