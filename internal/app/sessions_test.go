package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"minihotel/internal/domain"
)

// scriptedSettler replays a fixed list of events.
type scriptedSettler struct {
	events []domain.SettlementEvent
	err    error
	gate   chan struct{} // when set, events wait for it
}

func (s *scriptedSettler) Submit(ctx context.Context, req domain.SettlementRequest) (<-chan domain.SettlementEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(chan domain.SettlementEvent, len(s.events))
	go func() {
		defer close(out)
		if s.gate != nil {
			<-s.gate
		}
		for _, ev := range s.events {
			out <- ev
		}
	}()
	return out, nil
}

func confirmingSettler() *scriptedSettler {
	return &scriptedSettler{events: []domain.SettlementEvent{
		{Status: domain.SettlementValidatingCard},
		{Status: domain.SettlementCharging},
		{Status: domain.SettlementConfirmed},
	}}
}

func newTestStore(confirmed *[]domain.Confirmation, mu *sync.Mutex) *SessionStore {
	st := NewSessionStore(time.Minute, func(id string) FlowHooks {
		return FlowHooks{Confirmed: func(c domain.Confirmation) {
			mu.Lock()
			*confirmed = append(*confirmed, c)
			mu.Unlock()
		}}
	})
	st.now = fixedNow
	return st
}

func waitSettled(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Settled():
	case <-time.After(2 * time.Second):
		t.Fatalf("settlement did not finish")
	}
}

func TestSession_PayConfirms(t *testing.T) {
	var (
		mu        sync.Mutex
		confirmed []domain.Confirmation
	)
	st := newTestStore(&confirmed, &mu)
	s := st.Create()

	if err := s.Do(func(f *Flow) error { toPaying(t, f); return nil }); err != nil {
		t.Fatal(err)
	}
	if err := s.Pay(context.Background(), confirmingSettler()); err != nil {
		t.Fatalf("pay: %v", err)
	}
	waitSettled(t, s)

	snap := s.Snapshot()
	if snap.View != ViewCatalog || snap.Notice == nil || snap.Notice.Total != 11550 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(confirmed) != 1 {
		t.Fatalf("confirmed %d times", len(confirmed))
	}
}

func TestSession_CancelRefusedUntilSettled(t *testing.T) {
	var (
		mu        sync.Mutex
		confirmed []domain.Confirmation
	)
	st := newTestStore(&confirmed, &mu)
	s := st.Create()
	_ = s.Do(func(f *Flow) error { toPaying(t, f); return nil })

	settler := confirmingSettler()
	settler.gate = make(chan struct{})
	if err := s.Pay(context.Background(), settler); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := s.Do(func(f *Flow) error { return f.Cancel() }); !errors.Is(err, domain.ErrSettlementInProgress) {
		t.Fatalf("cancel mid-settlement: %v", err)
	}
	if err := s.Pay(context.Background(), settler); !errors.Is(err, domain.ErrSettlementInProgress) {
		t.Fatalf("double pay: %v", err)
	}
	if n := st.Sweep(fixedNow().Add(time.Hour)); n != 0 {
		t.Fatalf("swept a settling session")
	}

	close(settler.gate)
	waitSettled(t, s)
	if err := s.Do(func(f *Flow) error { return f.Cancel() }); err != nil {
		t.Fatalf("cancel after settlement: %v", err)
	}
}

func TestSession_SubmitErrorReleasesFlow(t *testing.T) {
	var (
		mu        sync.Mutex
		confirmed []domain.Confirmation
	)
	st := newTestStore(&confirmed, &mu)
	s := st.Create()
	_ = s.Do(func(f *Flow) error { toPaying(t, f); return nil })

	boom := errors.New("gateway down")
	if err := s.Pay(context.Background(), &scriptedSettler{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("pay: %v", err)
	}
	snap := s.Snapshot()
	if snap.Payment == nil || snap.Payment.Settling || snap.Payment.Error != "gateway down" {
		t.Fatalf("unexpected payment view: %+v", snap.Payment)
	}
	if err := s.Do(func(f *Flow) error { return f.Cancel() }); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestSessionStore_GetAndSweep(t *testing.T) {
	st := NewSessionStore(time.Minute, nil)
	now := fixedNow()
	st.now = func() time.Time { return now }

	a := st.Create()
	b := st.Create()
	if a.ID == b.ID {
		t.Fatalf("duplicate session ids")
	}
	if got, err := st.Get(a.ID); err != nil || got != a {
		t.Fatalf("get: %v", err)
	}
	if _, err := st.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}

	now = now.Add(45 * time.Second)
	_ = b.Do(func(f *Flow) error { return nil }) // touch b

	if n := st.Sweep(now.Add(30 * time.Second)); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if _, err := st.Get(a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("idle session kept")
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d", st.Len())
	}
}

func TestSessionStore_OnSizeFollowsCreateAndSweep(t *testing.T) {
	st := NewSessionStore(time.Minute, nil)
	now := fixedNow()
	st.now = func() time.Time { return now }
	var sizes []int
	st.OnSize(func(n int) { sizes = append(sizes, n) })

	st.Create()
	st.Create()
	st.Sweep(now.Add(2 * time.Minute))

	want := []int{1, 2, 0}
	if len(sizes) != len(want) {
		t.Fatalf("sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("sizes = %v, want %v", sizes, want)
		}
	}
}

func TestSessionStore_RunSweeperStops(t *testing.T) {
	st := NewSessionStore(time.Nanosecond, nil)
	st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var calls int
	var mu sync.Mutex
	go func() {
		_ = st.RunSweeper(ctx, time.Millisecond, func(n, left int) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for st.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("sweeper never evicted")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Fatalf("evicted callback not called")
	}
}
