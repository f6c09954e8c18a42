package app

import "minihotel/internal/domain"

// Snapshot is the read model of a Flow, enough to render the active view.
type Snapshot struct {
	View    View                 `json:"view"`
	Filters domain.SearchFilters `json:"filters"`
	Room    *domain.RoomDetails  `json:"room,omitempty"`
	Booking *BookingView         `json:"booking,omitempty"`
	Payment *PaymentView         `json:"payment,omitempty"`
	Notice  *domain.Confirmation `json:"notice,omitempty"`
}

type BookingView struct {
	Room         domain.Room          `json:"room"`
	Draft        domain.BookingDraft  `json:"draft"`
	Quote        domain.Quote         `json:"quote"`
	GuestOptions []domain.GuestOption `json:"guest_options"`
	// first selectable day of each picker
	MinCheckIn  domain.Date `json:"min_check_in"`
	MinCheckOut domain.Date `json:"min_check_out"`
}

// CardView never carries the full number or the CVV.
type CardView struct {
	Number    string `json:"number"`
	Expiry    string `json:"expiry"`
	CVVLength int    `json:"cvv_length"`
	Holder    string `json:"holder"`
	Brand     string `json:"brand"`
	Complete  bool   `json:"complete"`
}

type PaymentView struct {
	Order    domain.Order            `json:"order"`
	Card     CardView                `json:"card"`
	Status   domain.SettlementStatus `json:"status"`
	Settling bool                    `json:"settling"`
	Error    string                  `json:"error,omitempty"`
}

func (f *Flow) Snapshot() Snapshot {
	s := Snapshot{View: f.state.view(), Filters: f.filters, Notice: f.notice}
	switch st := f.state.(type) {
	case viewingRoomState:
		d := st.room.Details()
		s.Room = &d
	case *bookingState:
		today := f.today()
		minOut := today.AddDays(1)
		if st.draft.CheckIn != nil {
			minOut = st.draft.CheckIn.AddDays(1)
		}
		s.Booking = &BookingView{
			Room:         st.room,
			Draft:        st.draft,
			Quote:        domain.QuoteFor(st.room, st.draft),
			GuestOptions: st.room.GuestOptions(),
			MinCheckIn:   today,
			MinCheckOut:  minOut,
		}
	case *payingState:
		pv := &PaymentView{
			Order: st.order,
			Card: CardView{
				Number:    st.card.Masked(),
				Expiry:    st.card.Expiry,
				CVVLength: len(st.card.CVV),
				Holder:    st.card.Holder,
				Brand:     domain.Brand(st.card.Number),
				Complete:  st.card.Complete(),
			},
			Status:   st.status,
			Settling: st.submitted || st.status.InFlight(),
		}
		if st.failure != nil {
			pv.Error = st.failure.Error()
		}
		s.Payment = pv
	}
	return s
}
