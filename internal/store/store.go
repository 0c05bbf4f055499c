// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alkaman93/orgazm/internal/domain"
)

var (
	// ErrNotFound is returned when no request exists for the given kind and id.
	ErrNotFound = errors.New("request not found")

	// ErrAlreadyHandled is returned when the request exists but is no longer
	// pending. The stored operator response is never overwritten.
	ErrAlreadyHandled = errors.New("request already handled")
)

func errNonTerminal(s domain.Status) error {
	return fmt.Errorf("status %q is not terminal", s)
}

// Repository defines the interface for persisting users and requests.
type Repository interface {
	// UpsertUser creates a user record on first contact. An existing record
	// keeps its registration time; handle and first name are only filled in
	// if previously empty.
	UpsertUser(ctx context.Context, user *domain.User) error

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)

	// InsertRequest persists a new request and returns its assigned id.
	// Ids are unique and strictly increasing per kind.
	InsertRequest(ctx context.Context, req *domain.Request) (int64, error)

	// GetRequest retrieves a request by kind and id.
	// Returns ErrNotFound if no such request exists.
	GetRequest(ctx context.Context, kind domain.Kind, id int64) (*domain.Request, error)

	// ListPending returns all pending requests of the given kind,
	// newest id first.
	ListPending(ctx context.Context, kind domain.Kind) ([]*domain.Request, error)

	// CountPending returns the number of pending requests of the given kind.
	CountPending(ctx context.Context, kind domain.Kind) (int64, error)

	// AnswerRequest transitions a pending request to the given terminal
	// status and stores the operator response verbatim. Returns ErrNotFound
	// if the request does not exist and ErrAlreadyHandled if it is no
	// longer pending.
	AnswerRequest(ctx context.Context, kind domain.Kind, id int64, status domain.Status, response string) error

	// Ping verifies storage connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying storage.
	Close() error
}
