// Package domain contains core domain types for the vouch broker.
package domain

import "time"

// Kind identifies one of the three request kinds users can submit.
type Kind string

const (
	KindVerification Kind = "verification"
	KindComplaint    Kind = "complaint"
	KindPurchase     Kind = "purchase"
)

// Status is the lifecycle state of a request. A request starts Pending and
// moves exactly once to one of the terminal states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAnswered || s == StatusApproved || s == StatusRejected
}

// Request is one durable record created by a completed dialogue.
// TargetHandle is set for verification requests, Amount/Currency for
// verification and purchase requests, Body for complaints.
type Request struct {
	ID               int64
	Kind             Kind
	RequesterID      int64
	RequesterHandle  string
	TargetHandle     string
	Amount           float64
	Currency         string
	Body             string
	Status           Status
	OperatorResponse string
	CreatedAt        time.Time
}
