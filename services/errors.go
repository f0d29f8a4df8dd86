package services

import "errors"

const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 50
)

// ErrInvalidLimit wird zurückgegeben, wenn limit außerhalb von [MinLimit, MaxLimit] liegt.
var ErrInvalidLimit = errors.New("limit must be between 1 and 100")

// ValidateLimit prüft limit, bevor Cache oder Datenbank angefasst werden.
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}
