package domain_test

import (
	"errors"
	"testing"

	"minihotel/internal/domain"
)

func date(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return &d
}

func filledDraft(t *testing.T, in, out string) domain.BookingDraft {
	return domain.BookingDraft{
		CheckIn:   date(t, in),
		CheckOut:  date(t, out),
		Guests:    2,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Phone:     "+7 999 123-45-67",
	}
}

func TestQuote_ThreeNightsStandardRoom(t *testing.T) {
	room := domain.Room{ID: 1, Price: 3500, Guests: 2}
	q := domain.QuoteFor(room, filledDraft(t, "2026-11-01", "2026-11-04"))

	want := domain.Quote{
		Nights:       3,
		Subtotal:     10500,
		ServiceFee:   1050,
		Total:        11550,
		Prepayment:   3465,
		DueOnArrival: 8085,
		Valid:        true,
	}
	if q != want {
		t.Fatalf("quote = %+v, want %+v", q, want)
	}
}

func TestQuote_TotalsReconcile(t *testing.T) {
	for _, price := range []int64{1, 3, 7, 15, 99, 3500, 5555, 8500, 12345} {
		for nights := 1; nights <= 30; nights++ {
			d := filledDraft(t, "2026-01-01", "2026-01-01")
			out := d.CheckIn.AddDays(nights)
			d.CheckOut = &out
			q := domain.QuoteFor(domain.Room{Price: price}, d)

			sub := int64(nights) * price
			fee := (sub*10 + 50) / 100
			if q.Nights != nights || q.Subtotal != sub || q.Total != sub+fee {
				t.Fatalf("price %d nights %d: %+v", price, nights, q)
			}
			if q.Prepayment+q.DueOnArrival != q.Total {
				t.Fatalf("price %d nights %d: prepayment %d + due %d != total %d",
					price, nights, q.Prepayment, q.DueOnArrival, q.Total)
			}
		}
	}
}

func TestQuote_RoundsHalfAwayFromZero(t *testing.T) {
	// subtotal 5 -> fee 0.5 -> 1; total 6 -> prepayment 1.8 -> 2
	q := domain.QuoteFor(domain.Room{Price: 5}, filledDraft(t, "2026-03-01", "2026-03-02"))
	if q.ServiceFee != 1 || q.Total != 6 || q.Prepayment != 2 || q.DueOnArrival != 4 {
		t.Fatalf("unexpected rounding: %+v", q)
	}
}

func TestQuote_InvalidDrafts(t *testing.T) {
	room := domain.Room{Price: 3500, Guests: 2}
	cases := map[string]func(d *domain.BookingDraft){
		"no check-in":      func(d *domain.BookingDraft) { d.CheckIn = nil },
		"no check-out":     func(d *domain.BookingDraft) { d.CheckOut = nil },
		"same day":         func(d *domain.BookingDraft) { d.CheckOut = d.CheckIn },
		"check-out before": func(d *domain.BookingDraft) { prev := d.CheckIn.AddDays(-2); d.CheckOut = &prev },
		"no first name":    func(d *domain.BookingDraft) { d.FirstName = "" },
		"no last name":     func(d *domain.BookingDraft) { d.LastName = "" },
		"no email":         func(d *domain.BookingDraft) { d.Email = "" },
		"no phone":         func(d *domain.BookingDraft) { d.Phone = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := filledDraft(t, "2026-11-01", "2026-11-04")
			mutate(&d)
			if q := domain.QuoteFor(room, d); q.Valid {
				t.Fatalf("expected invalid quote, got %+v", q)
			}
			if err := d.Validate(); !errors.Is(err, domain.ErrIncomplete) {
				t.Fatalf("Validate() = %v, want ErrIncomplete", err)
			}
		})
	}
}

func TestQuote_NegativeNightsPriceNothing(t *testing.T) {
	d := filledDraft(t, "2026-11-04", "2026-11-01")
	q := domain.QuoteFor(domain.Room{Price: 3500}, d)
	if q.Nights != -3 || q.Total != 0 || q.Valid {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestEmailAndPhoneAcceptedAsIs(t *testing.T) {
	d := filledDraft(t, "2026-11-01", "2026-11-02")
	d.Email, d.Phone = "not an email", "call me"
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestNewBookingDraft_DefaultGuests(t *testing.T) {
	if g := domain.NewBookingDraft(domain.Room{Guests: 4}).Guests; g != 2 {
		t.Fatalf("guests = %d, want 2", g)
	}
	if g := domain.NewBookingDraft(domain.Room{Guests: 1}).Guests; g != 1 {
		t.Fatalf("guests = %d, want 1", g)
	}
}
