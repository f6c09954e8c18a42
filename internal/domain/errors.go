package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrIncomplete           = errors.New("validation incomplete")
	ErrDateNotSelectable    = errors.New("date not selectable")
	ErrGuestsOutOfRange     = errors.New("guest count out of range")
	ErrInvalidTransition    = errors.New("invalid flow transition")
	ErrOutOfOrder           = errors.New("settlement event out of order")
	ErrSettlementInProgress = errors.New("settlement in progress")
	ErrSearchUnsupported    = errors.New("search is not yet supported")
)

// incomplete wraps ErrIncomplete with the names of the missing fields.
func incomplete(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
}
