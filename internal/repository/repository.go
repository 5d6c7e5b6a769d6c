package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (mongodb, postgres) inside this directory.

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an id does not match the store's key format.
	ErrInvalidID = errors.New("invalid id")
)
