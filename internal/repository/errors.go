// Package repository defines sentinel errors shared by the data access layer.
// Handlers use these to map storage failures onto the right HTTP responses:
// ErrEmailExists becomes a "user already exists" rejection and ErrNotFound
// becomes a lookup miss, while anything else is treated as a server fault.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique index
// on the email field.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when no document matches the requested email or id.
var ErrNotFound = errors.New("user not found")
