package payment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"minihotel/internal/adapters/observability"
	"minihotel/internal/domain"
)

const (
	DefaultValidateDelay = 2000 * time.Millisecond
	DefaultChargeDelay   = 1500 * time.Millisecond
)

// Simulator settles every request successfully after two timed phases.
// Nothing is charged and the card is never inspected beyond its presence.
type Simulator struct {
	ValidateDelay time.Duration
	ChargeDelay   time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func NewSimulator(validate, charge time.Duration) *Simulator {
	return &Simulator{
		ValidateDelay: validate,
		ChargeDelay:   charge,
		now:           time.Now,
		after:         time.After,
	}
}

// Submit starts the settlement. Once started it runs to completion; ctx is
// only consulted before the first phase.
func (s *Simulator) Submit(ctx context.Context, req domain.SettlementRequest) (<-chan domain.SettlementEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Card.Validate(); err != nil {
		return nil, err
	}

	// buffered for every event so an abandoned reader never blocks us
	out := make(chan domain.SettlementEvent, 3)
	start := s.now()
	out <- domain.SettlementEvent{Status: domain.SettlementValidatingCard, At: start}
	observability.ObserveSettlement(domain.SettlementValidatingCard.String())

	go func() {
		defer close(out)
		s.wait(s.ValidateDelay)
		out <- domain.SettlementEvent{Status: domain.SettlementCharging, At: s.now()}
		observability.ObserveSettlement(domain.SettlementCharging.String())

		s.wait(s.ChargeDelay)
		done := s.now()
		out <- domain.SettlementEvent{Status: domain.SettlementConfirmed, At: done}
		observability.ObserveSettlement(domain.SettlementConfirmed.String())
		observability.ObserveSettlementDuration(done.Sub(start))

		log.Debug().
			Int64("amount", req.Amount).
			Str("brand", domain.Brand(req.Card.Number)).
			Dur("took", done.Sub(start)).
			Msg("simulated settlement confirmed")
	}()
	return out, nil
}

func (s *Simulator) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	<-s.after(d)
}
