package domain

import (
	"context"
	"fmt"
	"time"
)

// SettlementStatus is the phase of a payment settlement.
type SettlementStatus int

const (
	SettlementIdle SettlementStatus = iota
	SettlementValidatingCard
	SettlementCharging
	SettlementConfirmed
	SettlementFailed
)

func (s SettlementStatus) String() string {
	switch s {
	case SettlementIdle:
		return "idle"
	case SettlementValidatingCard:
		return "validating_card"
	case SettlementCharging:
		return "charging"
	case SettlementConfirmed:
		return "confirmed"
	case SettlementFailed:
		return "failed"
	}
	return "unknown"
}

func (s SettlementStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SettlementStatus) UnmarshalText(b []byte) error {
	for c := SettlementIdle; c <= SettlementFailed; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown settlement status %q", b)
}

// InFlight reports whether the payment dialog must refuse to close.
func (s SettlementStatus) InFlight() bool {
	return s == SettlementValidatingCard || s == SettlementCharging
}

func (s SettlementStatus) Terminal() bool {
	return s == SettlementConfirmed || s == SettlementFailed
}

// next is the only status a settlement may move to from s.
func (s SettlementStatus) next() SettlementStatus {
	switch s {
	case SettlementIdle:
		return SettlementValidatingCard
	case SettlementValidatingCard:
		return SettlementCharging
	case SettlementCharging:
		return SettlementConfirmed
	}
	return s
}

// CanAdvance reports whether an event with status to may follow s.
// Failure may interrupt any in-flight phase.
func (s SettlementStatus) CanAdvance(to SettlementStatus) bool {
	if to == SettlementFailed {
		return s.InFlight()
	}
	return !s.Terminal() && s.next() == to
}

type SettlementRequest struct {
	Order  Order
	Card   CardInput
	Amount int64 // charged now: the prepayment
}

type SettlementEvent struct {
	Status SettlementStatus
	At     time.Time
	Err    error // set on SettlementFailed
}

// Settler runs one settlement. The returned stream yields each phase once,
// in order, and is closed after the terminal event.
type Settler interface {
	Submit(ctx context.Context, req SettlementRequest) (<-chan SettlementEvent, error)
}

// Confirmation is the notice surfaced once a booking is paid.
type Confirmation struct {
	Code         string    `json:"code"`
	RoomName     string    `json:"room_name"`
	GuestName    string    `json:"guest_name"`
	Email        string    `json:"email"`
	CheckIn      Date      `json:"check_in"`
	CheckOut     Date      `json:"check_out"`
	Nights       int       `json:"nights"`
	Total        int64     `json:"total"`
	Prepaid      int64     `json:"prepaid"`
	DueOnArrival int64     `json:"due_on_arrival"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}
