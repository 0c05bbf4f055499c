package domain

// Step is the dialogue state a session is currently in. StepIdle means no
// dialogue is in progress.
type Step int

const (
	StepIdle Step = iota
	StepVerificationTarget
	StepVerificationAmount
	StepVerificationCurrency
	StepComplaintBody
	StepPurchaseAmount
	StepPurchaseCurrency
)

// Dialogue names the multi-step flow a session is collecting fields for.
type Dialogue string

const (
	DialogueNone         Dialogue = ""
	DialogueVerification Dialogue = "verification"
	DialogueComplaint    Dialogue = "complaint"
	DialoguePurchase     Dialogue = "purchase"
)

// Session holds volatile per-user dialogue state. At most one dialogue is
// active per user; partially collected fields are discarded whenever the
// dialogue is restarted or the user returns to the menu. BannerMessageID is
// the id of the last banner message shown in the user's chat (0 when none),
// so at most one banner is live per chat.
type Session struct {
	UserID          int64
	Dialogue        Dialogue
	Step            Step
	Target          string
	Amount          float64
	Currency        string
	Body            string
	BannerMessageID int
}

// Active reports whether a dialogue is in progress.
func (s *Session) Active() bool {
	return s.Step != StepIdle
}

// Clear discards the active dialogue and all collected fields. The banner
// message id survives; it tracks the chat, not the dialogue.
func (s *Session) Clear() {
	s.Dialogue = DialogueNone
	s.Step = StepIdle
	s.Target = ""
	s.Amount = 0
	s.Currency = ""
	s.Body = ""
}
