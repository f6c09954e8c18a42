package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"minihotel/internal/domain"
)

// View names the single storefront view that is active.
type View string

const (
	ViewCatalog     View = "catalog"
	ViewViewingRoom View = "viewing_room"
	ViewBooking     View = "booking"
	ViewPaying      View = "paying"
)

// flowState is the tagged variant behind a Flow. Each view carries only its
// own data, so two views can never be open at once.
type flowState interface{ view() View }

type catalogState struct{}

type viewingRoomState struct{ room domain.Room }

type bookingState struct {
	room  domain.Room
	draft domain.BookingDraft
}

type payingState struct {
	order     domain.Order
	card      domain.CardInput
	status    domain.SettlementStatus
	submitted bool // settlement requested, first event not yet applied
	failure   error
}

func (catalogState) view() View { return ViewCatalog }
func (viewingRoomState) view() View { return ViewViewingRoom }
func (*bookingState) view() View { return ViewBooking }
func (*payingState) view() View { return ViewPaying }

// FlowHooks are notified of flow changes. Either field may be nil.
type FlowHooks struct {
	Transition func(from, to View)
	Confirmed  func(domain.Confirmation)
}

// Flow is the page-level coordinator of one storefront session.
// It is not safe for concurrent use; Session serializes access.
type Flow struct {
	state   flowState
	filters domain.SearchFilters
	notice  *domain.Confirmation

	now     func() time.Time
	newCode func() string
	hooks   FlowHooks
}

func NewFlow(hooks FlowHooks) *Flow {
	return &Flow{
		state:   catalogState{},
		now:     time.Now,
		newCode: func() string { return uuid.NewString() },
		hooks:   hooks,
	}
}

func (f *Flow) View() View { return f.state.view() }

func (f *Flow) today() domain.Date { return domain.DateOf(f.now()) }

func (f *Flow) moveTo(next flowState) {
	from := f.state.view()
	f.state = next
	if f.hooks.Transition != nil && from != next.view() {
		f.hooks.Transition(from, next.view())
	}
}

func (f *Flow) invalid(op string) error {
	return fmt.Errorf("%s from %s: %w", op, f.state.view(), domain.ErrInvalidTransition)
}

// Search records the filters. Searching the catalog is not supported yet,
// which is reported as ErrSearchUnsupported rather than silently ignored.
func (f *Flow) Search(filters domain.SearchFilters) error {
	if _, ok := f.state.(catalogState); !ok {
		return f.invalid("search")
	}
	f.filters = filters
	return domain.ErrSearchUnsupported
}

func (f *Flow) SelectRoom(room domain.Room) error {
	if _, ok := f.state.(catalogState); !ok {
		return f.invalid("select room")
	}
	f.notice = nil
	f.moveTo(viewingRoomState{room: room})
	return nil
}

func (f *Flow) StartBooking(room domain.Room) error {
	switch f.state.(type) {
	case catalogState, viewingRoomState:
	default:
		return f.invalid("start booking")
	}
	f.notice = nil
	f.moveTo(&bookingState{room: room, draft: domain.NewBookingDraft(room)})
	return nil
}

// BookingPatch carries the booking form fields that changed. Nil fields are
// left as they are; the Clear flags unset a chosen date.
type BookingPatch struct {
	CheckIn       *domain.Date
	CheckOut      *domain.Date
	ClearCheckIn  bool
	ClearCheckOut bool
	Guests        *int
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
}

// UpdateBooking applies p to the draft as a whole or not at all, and
// returns the recomputed quote.
func (f *Flow) UpdateBooking(p BookingPatch) (domain.Quote, error) {
	st, ok := f.state.(*bookingState)
	if !ok {
		return domain.Quote{}, f.invalid("update booking")
	}
	d := st.draft
	today := f.today()

	if p.ClearCheckIn {
		d.CheckIn = nil
	}
	if p.CheckIn != nil {
		if !domain.CheckInSelectable(*p.CheckIn, today) {
			return domain.Quote{}, fmt.Errorf("check-in %s: %w", p.CheckIn, domain.ErrDateNotSelectable)
		}
		in := *p.CheckIn
		d.CheckIn = &in
	}
	if p.ClearCheckOut {
		d.CheckOut = nil
	}
	if p.CheckOut != nil {
		if !domain.CheckOutSelectable(*p.CheckOut, d.CheckIn, today) {
			return domain.Quote{}, fmt.Errorf("check-out %s: %w", p.CheckOut, domain.ErrDateNotSelectable)
		}
		out := *p.CheckOut
		d.CheckOut = &out
	}
	if p.Guests != nil {
		if *p.Guests < 1 || *p.Guests > st.room.Guests {
			return domain.Quote{}, fmt.Errorf("%d of %d: %w", *p.Guests, st.room.Guests, domain.ErrGuestsOutOfRange)
		}
		d.Guests = *p.Guests
	}
	for _, fld := range []struct {
		dst *string
		src *string
	}{
		{&d.FirstName, p.FirstName},
		{&d.LastName, p.LastName},
		{&d.Email, p.Email},
		{&d.Phone, p.Phone},
	} {
		if fld.src != nil {
			*fld.dst = *fld.src
		}
	}

	st.draft = d
	return domain.QuoteFor(st.room, d), nil
}

// SubmitBooking freezes the draft into an order and opens the payment step.
func (f *Flow) SubmitBooking() (domain.Order, error) {
	st, ok := f.state.(*bookingState)
	if !ok {
		return domain.Order{}, f.invalid("submit booking")
	}
	if err := st.draft.Validate(); err != nil {
		return domain.Order{}, err
	}
	// the draft may have been filled in on an earlier day
	if in := *st.draft.CheckIn; !domain.CheckInSelectable(in, f.today()) {
		return domain.Order{}, fmt.Errorf("check-in %s: %w", in, domain.ErrDateNotSelectable)
	}
	order := domain.Order{Room: st.room, Draft: st.draft, Quote: domain.QuoteFor(st.room, st.draft)}
	f.moveTo(&payingState{order: order})
	return order, nil
}

// CardPatch carries raw keystroke text for the payment fields that changed.
type CardPatch struct {
	Number *string
	Expiry *string
	CVV    *string
	Holder *string
}

func (f *Flow) EnterCard(p CardPatch) (domain.CardInput, error) {
	st, ok := f.state.(*payingState)
	if !ok {
		return domain.CardInput{}, f.invalid("enter card")
	}
	if st.submitted || st.status.InFlight() {
		return st.card, domain.ErrSettlementInProgress
	}
	c := st.card
	if p.Number != nil {
		c.Number = domain.ApplyCardNumber(c.Number, *p.Number)
	}
	if p.Expiry != nil {
		c.Expiry = domain.ApplyExpiry(c.Expiry, *p.Expiry)
	}
	if p.CVV != nil {
		c.CVV = domain.ApplyCVV(c.CVV, *p.CVV)
	}
	if p.Holder != nil {
		c.Holder = domain.ApplyHolder(*p.Holder)
	}
	st.card = c
	return c, nil
}

// BeginSettlement locks the payment step and returns the request to hand to
// a Settler. From here on the flow cannot be cancelled until the settlement
// reaches a terminal phase or AbortSettlement is called.
func (f *Flow) BeginSettlement() (domain.SettlementRequest, error) {
	st, ok := f.state.(*payingState)
	if !ok {
		return domain.SettlementRequest{}, f.invalid("begin settlement")
	}
	if st.submitted || st.status.InFlight() {
		return domain.SettlementRequest{}, domain.ErrSettlementInProgress
	}
	if err := st.card.Validate(); err != nil {
		return domain.SettlementRequest{}, err
	}
	st.status = domain.SettlementIdle
	st.failure = nil
	st.submitted = true
	return domain.SettlementRequest{Order: st.order, Card: st.card, Amount: st.order.Quote.Prepayment}, nil
}

// AbortSettlement releases a settlement that never started.
func (f *Flow) AbortSettlement(cause error) {
	st, ok := f.state.(*payingState)
	if !ok || !st.submitted || st.status != domain.SettlementIdle {
		return
	}
	st.submitted = false
	st.failure = cause
}

// ApplySettlement advances the payment step by one settlement event. Phases
// must arrive strictly in order; confirmation ends the flow.
func (f *Flow) ApplySettlement(ev domain.SettlementEvent) error {
	st, ok := f.state.(*payingState)
	if !ok || !st.submitted {
		return f.invalid("apply settlement " + ev.Status.String())
	}
	if !st.status.CanAdvance(ev.Status) {
		return fmt.Errorf("%s after %s: %w", ev.Status, st.status, domain.ErrOutOfOrder)
	}
	st.status = ev.Status

	switch ev.Status {
	case domain.SettlementFailed:
		st.submitted = false
		st.failure = ev.Err
		st.card = domain.CardInput{}
	case domain.SettlementConfirmed:
		c := f.confirm(st.order, ev.At)
		f.notice = &c
		f.moveTo(catalogState{})
		if f.hooks.Confirmed != nil {
			f.hooks.Confirmed(c)
		}
	}
	return nil
}

func (f *Flow) confirm(o domain.Order, at time.Time) domain.Confirmation {
	if at.IsZero() {
		at = f.now()
	}
	return domain.Confirmation{
		Code:         f.newCode(),
		RoomName:     o.Room.Name,
		GuestName:    o.GuestName(),
		Email:        o.Draft.Email,
		CheckIn:      *o.Draft.CheckIn,
		CheckOut:     *o.Draft.CheckOut,
		Nights:       o.Quote.Nights,
		Total:        o.Quote.Total,
		Prepaid:      o.Quote.Prepayment,
		DueOnArrival: o.Quote.DueOnArrival,
		ConfirmedAt:  at.UTC(),
	}
}

// Settling reports whether a settlement is in flight.
func (f *Flow) Settling() bool {
	st, ok := f.state.(*payingState)
	return ok && (st.submitted || st.status.InFlight())
}

// Cancel closes whatever view is open and discards its state.
func (f *Flow) Cancel() error {
	if f.Settling() {
		return domain.ErrSettlementInProgress
	}
	f.moveTo(catalogState{})
	return nil
}
