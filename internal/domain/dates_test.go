package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"minihotel/internal/domain"
)

func TestDate_DaysUntilAcrossDST(t *testing.T) {
	in := date(t, "2026-03-27")
	out := date(t, "2026-04-02")
	if n := in.DaysUntil(*out); n != 6 {
		t.Fatalf("DaysUntil = %d, want 6", n)
	}
	if n := out.DaysUntil(*in); n != -6 {
		t.Fatalf("DaysUntil = %d, want -6", n)
	}
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	d := domain.DateOf(time.Date(2026, 10, 16, 23, 59, 0, 0, loc))
	if d.String() != "2026-10-16" {
		t.Fatalf("DateOf = %s", d)
	}
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		D domain.Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2026-12-31"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := json.Marshal(v)
	if string(b) != `{"d":"2026-12-31"}` {
		t.Fatalf("marshal = %s", b)
	}
	if err := json.Unmarshal([]byte(`{"d":"31/12/2026"}`), &v); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDatePickerPolicy(t *testing.T) {
	today := *date(t, "2026-10-16")
	yesterday, tomorrow := today.AddDays(-1), today.AddDays(1)

	if !domain.CheckInSelectable(today, today) || !domain.CheckInSelectable(tomorrow, today) {
		t.Fatalf("today and later must be selectable for check-in")
	}
	if domain.CheckInSelectable(yesterday, today) {
		t.Fatalf("past check-in must not be selectable")
	}

	if domain.CheckOutSelectable(today, nil, today) {
		t.Fatalf("check-out today without check-in must not be selectable")
	}
	if !domain.CheckOutSelectable(tomorrow, nil, today) {
		t.Fatalf("check-out tomorrow without check-in must be selectable")
	}

	in := today.AddDays(5)
	if domain.CheckOutSelectable(in, &in, today) {
		t.Fatalf("check-out on check-in day must not be selectable")
	}
	if !domain.CheckOutSelectable(in.AddDays(1), &in, today) {
		t.Fatalf("check-out after check-in must be selectable")
	}
}
