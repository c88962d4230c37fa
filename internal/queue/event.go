// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published after a successful registration.  It
// carries enough information for downstream consumers (welcome mail, CRM
// sync, analytics) without querying the primary database.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RegisteredAt string `json:"registered_at"`
}
