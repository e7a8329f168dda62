package records

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func rec(client, category string, hearing *time.Time) ClientRecord {
	return ClientRecord{Client: client, Category: category, NextHearingDate: hearing}
}

func TestComputeTargets(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 29, 14, 30, 0, 0, time.Local)
	tg := ComputeTargets(now, 7, 1000)
	if !SameDate(tg.Near, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Near = %v, want 2026-09-05", tg.Near)
	}
	if !SameDate(tg.Far, tg.Near.AddDate(0, 0, 1000)) {
		t.Errorf("Far = %v, want Near+1000d", tg.Far)
	}
}

func TestFilterRules(t *testing.T) {
	t.Parallel()
	targets := TargetDates{
		Near: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Far:  time.Date(2029, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	allowed := []string{"Active", "NoClientsInstruction"}

	recs := []ClientRecord{
		rec("near-match", "Active", date(2026, 9, 5)),
		rec("far-match", "NoClientsInstruction", date(2029, 6, 2)),
		rec("wrong-date", "Active", date(2026, 9, 6)),
		rec("wrong-category", "Inactive", date(2026, 9, 5)),
		rec("null-date", "Active", nil),
		rec("near-match-2", "Active", date(2026, 9, 5)),
	}

	got := Filter(recs, allowed, targets)
	want := []string{"near-match", "far-match", "near-match-2"}
	if len(got) != len(want) {
		t.Fatalf("filtered = %d records, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Client != name {
			t.Errorf("filtered[%d] = %q, want %q (order must be preserved)", i, got[i].Client, name)
		}
	}
}

func TestFilterUpcomingWindowScenario(t *testing.T) {
	t.Parallel()
	// A record due exactly at today+7 with a spaced contact number.
	now := time.Now()
	hearing := now.AddDate(0, 0, 7)
	r := ClientRecord{
		Client:          "A",
		Contact:         normalizeContact("+1 234 567"),
		Category:        "Active",
		NextHearingDate: date(hearing.Year(), hearing.Month(), hearing.Day()),
	}
	got := Filter([]ClientRecord{r}, []string{"Active"}, ComputeTargets(now, 7, 1000))
	if len(got) != 1 {
		t.Fatalf("filtered = %d, want 1", len(got))
	}
	if got[0].Contact != "+1234567" {
		t.Errorf("Contact = %q, want %q", got[0].Contact, "+1234567")
	}
}

func TestFilterEmptyAllowList(t *testing.T) {
	t.Parallel()
	got := Filter([]ClientRecord{rec("x", "Active", date(2026, 9, 5))}, nil, TargetDates{
		Near: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
	})
	if len(got) != 0 {
		t.Fatalf("filtered = %d, want 0", len(got))
	}
}
