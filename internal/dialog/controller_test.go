package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alkaman93/orgazm/internal/domain"
	"github.com/alkaman93/orgazm/internal/store"
	"github.com/alkaman93/orgazm/internal/transport"
)

const adminID int64 = 99

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent   []sentMessage
	nextID int
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string, _ transport.Keyboard) (int, error) {
	f.nextID++
	f.sent = append(f.sent, sentMessage{chatID, text})
	return f.nextID, nil
}

func (f *fakeSender) SendImage(_ context.Context, chatID int64, _ string) (int, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeSender) DeleteMessage(context.Context, int64, int) error { return nil }

func (f *fakeSender) lastTo(chatID int64) string {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].chatID == chatID {
			return f.sent[i].text
		}
	}
	return ""
}

func newTestController() (*Controller, *store.MemoryStore, *fakeSender) {
	repo := store.NewMemory()
	sender := &fakeSender{}
	c := NewController(repo, sender, adminID, "orgazm", Payment{TONWallet: "ton-wallet"})
	return c, repo, sender
}

func event(userID int64, text string) transport.Event {
	return transport.Event{UserID: userID, ChatID: userID, Username: "alice", Text: text}
}

func TestVerificationDialogue_CompletesAndResets(t *testing.T) {
	ctx := context.Background()
	c, repo, sender := newTestController()
	s := &domain.Session{UserID: 10}

	if err := c.Start(ctx, s, 10, domain.DialogueVerification); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Step != domain.StepVerificationTarget {
		t.Fatalf("expected target step, got %d", s.Step)
	}

	for _, input := range []string{"durov", "500", "$"} {
		if err := c.HandleInput(ctx, s, event(10, input)); err != nil {
			t.Fatalf("HandleInput(%q): %v", input, err)
		}
	}

	if s.Active() {
		t.Error("session should be idle after completion")
	}

	req, err := repo.GetRequest(ctx, domain.KindVerification, 1)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.TargetHandle != "@durov" {
		t.Errorf("expected @-normalized handle, got %q", req.TargetHandle)
	}
	if req.Amount != 500 || req.Currency != "$" {
		t.Errorf("unexpected amount/currency: %v %q", req.Amount, req.Currency)
	}
	if req.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", req.Status)
	}

	notification := sender.lastTo(adminID)
	for _, want := range []string{"#1", "@durov", "500", "$", "answer-verification 1"} {
		if !strings.Contains(notification, want) {
			t.Errorf("operator notification missing %q:\n%s", want, notification)
		}
	}
	if !strings.Contains(sender.lastTo(10), "#1") {
		t.Errorf("confirmation missing request id:\n%s", sender.lastTo(10))
	}
}

func TestAmountStep_RepromptsWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	c, repo, sender := newTestController()
	s := &domain.Session{UserID: 10}

	c.Start(ctx, s, 10, domain.DialogueVerification)
	c.HandleInput(ctx, s, event(10, "@durov"))

	for _, bad := range []string{"abc", "-5", "12,5", "NaN", "Inf", ""} {
		if err := c.HandleInput(ctx, s, event(10, bad)); err != nil {
			t.Fatalf("HandleInput(%q): %v", bad, err)
		}
		if s.Step != domain.StepVerificationAmount {
			t.Errorf("input %q advanced state to %d", bad, s.Step)
		}
		if s.Amount != 0 {
			t.Errorf("input %q mutated amount to %v", bad, s.Amount)
		}
		if sender.lastTo(10) != msgBadAmount {
			t.Errorf("input %q: expected numeric-format error, got %q", bad, sender.lastTo(10))
		}
	}

	if n, _ := repo.CountPending(ctx, domain.KindVerification); n != 0 {
		t.Errorf("invalid input produced %d stored requests", n)
	}
}

func TestPurchaseDialogue_EnforcesMinimum(t *testing.T) {
	ctx := context.Background()
	c, repo, sender := newTestController()
	s := &domain.Session{UserID: 10}

	c.Start(ctx, s, 10, domain.DialoguePurchase)

	if err := c.HandleInput(ctx, s, event(10, "99.99")); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if s.Step != domain.StepPurchaseAmount {
		t.Errorf("below-minimum amount advanced state to %d", s.Step)
	}
	if sender.lastTo(10) != msgMinPurchase {
		t.Errorf("expected minimum-violation reply, got %q", sender.lastTo(10))
	}
	if n, _ := repo.CountPending(ctx, domain.KindPurchase); n != 0 {
		t.Error("below-minimum amount produced a stored request")
	}

	c.HandleInput(ctx, s, event(10, "150"))
	if err := c.HandleInput(ctx, s, event(10, "TON")); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}

	req, err := repo.GetRequest(ctx, domain.KindPurchase, 1)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Amount != 150 || req.Currency != "TON" {
		t.Errorf("unexpected purchase record: %+v", req)
	}
	if !strings.Contains(sender.lastTo(10), "ton-wallet") {
		t.Errorf("purchase confirmation missing payment details:\n%s", sender.lastTo(10))
	}
}

func TestComplaintDialogue_StoresBodyVerbatim(t *testing.T) {
	ctx := context.Background()
	c, repo, _ := newTestController()
	s := &domain.Session{UserID: 10}

	c.Start(ctx, s, 10, domain.DialogueComplaint)

	if err := c.HandleInput(ctx, s, event(10, "   ")); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}
	if s.Step != domain.StepComplaintBody {
		t.Error("blank body advanced state")
	}

	body := "scammed by @badguy\nfor 200 $"
	if err := c.HandleInput(ctx, s, event(10, body)); err != nil {
		t.Fatalf("HandleInput: %v", err)
	}

	req, err := repo.GetRequest(ctx, domain.KindComplaint, 1)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if req.Body != body {
		t.Errorf("body not stored verbatim: %q", req.Body)
	}
}

func TestStart_DiscardsPreviousProgress(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController()
	s := &domain.Session{UserID: 10}

	c.Start(ctx, s, 10, domain.DialogueVerification)
	c.HandleInput(ctx, s, event(10, "@durov"))
	c.HandleInput(ctx, s, event(10, "500"))

	if err := c.Start(ctx, s, 10, domain.DialogueVerification); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Step != domain.StepVerificationTarget {
		t.Errorf("restart did not go back to the first step: %d", s.Step)
	}
	if s.Target != "" || s.Amount != 0 {
		t.Errorf("residual fields after restart: %+v", s)
	}
}

type failingRepo struct {
	*store.MemoryStore
}

func (f *failingRepo) InsertRequest(context.Context, *domain.Request) (int64, error) {
	return 0, errors.New("disk full")
}

func TestComplete_StoreFailureIsFatalToTheRequest(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	c := NewController(&failingRepo{store.NewMemory()}, sender, adminID, "orgazm", Payment{})
	s := &domain.Session{UserID: 10}

	c.Start(ctx, s, 10, domain.DialogueComplaint)
	err := c.HandleInput(ctx, s, event(10, "some complaint"))
	if err == nil {
		t.Fatal("expected an error from a failing store")
	}
	if s.Active() {
		t.Error("session should be reset after a store failure")
	}
	if sender.lastTo(10) != msgStoreFailure {
		t.Errorf("expected generic failure reply, got %q", sender.lastTo(10))
	}
	if got := sender.lastTo(adminID); got != "" {
		t.Errorf("operator should not be notified on failure, got %q", got)
	}
}
