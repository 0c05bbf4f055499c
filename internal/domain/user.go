package domain

import "time"

// User is a registered chat identity. Created on first contact, never
// deleted; handle and first name are filled in later only if they were
// unknown at registration time.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	RegisteredAt time.Time
}
