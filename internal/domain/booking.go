package domain

import "strings"

// Percentages applied to a stay, in whole percent.
const (
	ServiceFeePercent = 10
	PrepaymentPercent = 30
)

// BookingDraft is the in-progress booking form for one room.
type BookingDraft struct {
	CheckIn   *Date  `json:"check_in,omitempty"`
	CheckOut  *Date  `json:"check_out,omitempty"`
	Guests    int    `json:"guests"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func NewBookingDraft(room Room) BookingDraft {
	return BookingDraft{Guests: room.DefaultGuests()}
}

type Quote struct {
	Nights       int   `json:"nights"`
	Subtotal     int64 `json:"subtotal"`
	ServiceFee   int64 `json:"service_fee"`
	Total        int64 `json:"total"`
	Prepayment   int64 `json:"prepayment"`
	DueOnArrival int64 `json:"due_on_arrival"`
	Valid        bool  `json:"valid"`
}

// Nights is 0 until both dates are set, and may be negative.
func (d BookingDraft) Nights() int {
	if d.CheckIn == nil || d.CheckOut == nil {
		return 0
	}
	return d.CheckIn.DaysUntil(*d.CheckOut)
}

// Missing lists the fields still blocking submission.
func (d BookingDraft) Missing() []string {
	var out []string
	if d.CheckIn == nil {
		out = append(out, "check_in")
	}
	if d.CheckOut == nil {
		out = append(out, "check_out")
	}
	if d.CheckIn != nil && d.CheckOut != nil && d.Nights() <= 0 {
		out = append(out, "nights")
	}
	for _, f := range []struct{ name, v string }{
		{"first_name", d.FirstName},
		{"last_name", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
	} {
		if f.v == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Validate returns an ErrIncomplete-wrapped error naming the missing fields.
func (d BookingDraft) Validate() error { return incomplete(d.Missing()) }

// QuoteFor prices the draft against room. Pure; safe to call on every edit.
func QuoteFor(room Room, d BookingDraft) Quote {
	q := Quote{Nights: d.Nights()}
	if q.Nights > 0 {
		q.Subtotal = int64(q.Nights) * room.Price
		q.ServiceFee = percentOf(q.Subtotal, ServiceFeePercent)
		q.Total = q.Subtotal + q.ServiceFee
		q.Prepayment = percentOf(q.Total, PrepaymentPercent)
		q.DueOnArrival = q.Total - q.Prepayment
	}
	q.Valid = len(d.Missing()) == 0
	return q
}

// percentOf rounds v×pct/100 half away from zero.
func percentOf(v, pct int64) int64 {
	n := v * pct
	if n < 0 {
		return -((-n + 50) / 100)
	}
	return (n + 50) / 100
}

// Order is a submitted draft bound to its room with a frozen quote.
type Order struct {
	Room  Room         `json:"room"`
	Draft BookingDraft `json:"draft"`
	Quote Quote        `json:"quote"`
}

func (o Order) GuestName() string {
	return strings.TrimSpace(o.Draft.FirstName + " " + o.Draft.LastName)
}
