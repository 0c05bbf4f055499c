// Package admin implements the operator-facing command surface: a small
// text grammar for answering requests plus the pending/stats/banner views.
package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alkaman93/orgazm/internal/domain"
)

// Command names. Tokens are case-sensitive, one command per line.
const (
	CmdAnswerVerification  = "answer-verification"
	CmdAnswerComplaint     = "answer-complaint"
	CmdAnswerPurchase      = "answer-purchase"
	CmdApproveVerification = "approve-verification"
	CmdRejectVerification  = "reject-verification"
	CmdListPending         = "list-pending"
	CmdStats               = "stats"
	CmdSetBanner           = "setbanner"
	CmdRemoveBanner        = "removebanner"
)

// ErrUnknown is returned when the first token is not a recognized command.
var ErrUnknown = errors.New("unknown command")

// UsageError reports a recognized command with malformed arguments.
type UsageError struct {
	Usage  string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s; usage: %s", e.Reason, e.Usage)
}

// Command is the structured parse of one operator line.
type Command struct {
	Name string
	Kind domain.Kind
	ID   int64
	Text string
}

// answerKinds maps answer commands to the request kind they resolve against.
var answerKinds = map[string]domain.Kind{
	CmdAnswerVerification: domain.KindVerification,
	CmdAnswerComplaint:    domain.KindComplaint,
	CmdAnswerPurchase:     domain.KindPurchase,
}

// Parse reads one operator command line. It returns ErrUnknown when the
// first token is not a command, and a *UsageError when a known command has
// a missing or malformed id or response text. Expected invalid input never
// panics; callers branch on the returned error.
func Parse(line string) (Command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")

	switch name {
	case CmdListPending, CmdStats, CmdSetBanner, CmdRemoveBanner:
		return Command{Name: name}, nil

	case CmdAnswerVerification, CmdAnswerComplaint, CmdAnswerPurchase:
		usage := name + " <id> <text>"
		id, text, err := parseIDAndText(rest, usage)
		if err != nil {
			return Command{}, err
		}
		if text == "" {
			return Command{}, &UsageError{Usage: usage, Reason: "missing response text"}
		}
		return Command{Name: name, Kind: answerKinds[name], ID: id, Text: text}, nil

	case CmdApproveVerification, CmdRejectVerification:
		usage := name + " <id> [text]"
		id, text, err := parseIDAndText(rest, usage)
		if err != nil {
			return Command{}, err
		}
		return Command{Name: name, Kind: domain.KindVerification, ID: id, Text: text}, nil

	default:
		return Command{}, ErrUnknown
	}
}

func parseIDAndText(rest, usage string) (int64, string, error) {
	idStr, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if idStr == "" {
		return 0, "", &UsageError{Usage: usage, Reason: "missing id"}
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", &UsageError{Usage: usage, Reason: fmt.Sprintf("id %q is not a positive integer", idStr)}
	}
	return id, strings.TrimSpace(text), nil
}
