package token

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFoundOrUsed  = errors.New("token not found or already used")
	ErrExpired         = errors.New("token expired")
	ErrAlreadyConsumed = errors.New("token already consumed")
	ErrDigestCollision = errors.New("token digest collision")
	ErrInvalidLink     = errors.New("invalid or expired link")
)

// IsInvalid reports whether err means the presented secret can not be used.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrNotFoundOrUsed) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrAlreadyConsumed)
}

type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("token storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InvalidLinkError hides the precise reason behind a generic message.
type InvalidLinkError struct {
	Reason error
}

func NewInvalidLinkError(reason error) *InvalidLinkError {
	return &InvalidLinkError{Reason: reason}
}

func (e *InvalidLinkError) Error() string {
	return ErrInvalidLink.Error()
}

func (e *InvalidLinkError) Is(target error) bool {
	return target == ErrInvalidLink
}

func (e *InvalidLinkError) Unwrap() error {
	return e.Reason
}

type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown is active, retry in %d seconds", e.RemainingSeconds())
}

func (e *CooldownActiveError) RemainingSeconds() int {
	return floorSeconds(e.Remaining)
}

// RetryAfterSeconds rounds up and is at least 1, so a client waiting that
// long is past the cooldown.
func (e *CooldownActiveError) RetryAfterSeconds() int {
	seconds := floorSeconds(e.Remaining)
	if time.Duration(seconds)*time.Second < e.Remaining {
		seconds++
	}
	if seconds < 1 {
		return 1
	}
	return seconds
}

func floorSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
