package query

import (
	"testing"
	"time"
)

var trt = time.FixedZone("TRT", 3*60*60)

func fixedResolver(y int, m time.Month, d int) *Resolver {
	now := time.Date(y, m, d, 15, 30, 0, 0, trt)
	return NewResolver(trt, func() time.Time { return now })
}

func ymd(t time.Time) string { return t.Format("2006-01-02") }

func TestResolve_Table(t *testing.T) {
	// 2026-10-18 is a Sunday.
	r := fixedResolver(2026, time.October, 18)

	tests := []struct {
		text       string
		start, end string
		rule       string
	}{
		{"19 ekim'de ne var?", "2026-10-19", "2026-10-19", "explicit_day"},
		{"18 Ekim", "2026-10-18", "2026-10-18", "explicit_day"},
		{"17 ekim konser", "2027-10-17", "2027-10-17", "explicit_day"},
		{"1 ocak", "2027-01-01", "2027-01-01", "explicit_day"},
		{"5 subat", "2027-02-05", "2027-02-05", "explicit_day"},
		{"31 kasım", "2026-11-01", "2026-11-30", "month"},
		{"kasım ayı etkinlikleri", "2026-11-01", "2026-11-30", "month"},
		{"kasimda neler var", "2026-11-01", "2026-11-30", "month"},
		{"ekim", "2026-10-01", "2026-10-31", "month"},
		{"aralık", "2026-12-01", "2026-12-31", "month"},
		{"mart", "2027-03-01", "2027-03-31", "month"},
		{"şubat", "2027-02-01", "2027-02-28", "month"},
		{"Bu hafta sonu konser var mı?", "2026-10-24", "2026-10-25", "weekend"},
		{"haftasonu", "2026-10-24", "2026-10-25", "weekend"},
		{"BUGÜN", "2026-10-18", "2026-10-18", "today"},
		{"bugun ne yapsam", "2026-10-18", "2026-10-18", "today"},
		{"Yarın tiyatro", "2026-10-19", "2026-10-19", "tomorrow"},
		{"yarin", "2026-10-19", "2026-10-19", "tomorrow"},
		{"bu hafta", "2026-10-18", "2026-10-18", "this_week"},
		{"önümüzdeki 7 gün", "2026-10-18", "2026-10-25", "relative_days"},
		{"onumuzdeki 3 gun", "2026-10-18", "2026-10-21", "relative_days"},
		{"gelecek 45 gün", "2026-10-18", "2026-12-02", "relative_days"},
	}
	for _, tt := range tests {
		dr, ok := r.Resolve(tt.text)
		if !ok {
			t.Errorf("%q: expected a match", tt.text)
			continue
		}
		if ymd(dr.Start) != tt.start || ymd(dr.End) != tt.end {
			t.Errorf("%q: got %s..%s, want %s..%s", tt.text, ymd(dr.Start), ymd(dr.End), tt.start, tt.end)
		}
		if got := r.Rule(tt.text); got != tt.rule {
			t.Errorf("%q: rule %q, want %q", tt.text, got, tt.rule)
		}
	}
}

func TestResolve_RelativeDaysClampedToLastYear(t *testing.T) {
	r := fixedResolver(2026, time.October, 18)
	for _, text := range []string{"önümüzdeki 3000000 gün", "gelecek 99999999999 gün"} {
		dr, ok := r.Resolve(text)
		if !ok {
			t.Fatalf("%q: expected a match", text)
		}
		if ymd(dr.Start) != "2026-10-18" || ymd(dr.End) != "9999-12-31" {
			t.Fatalf("%q: got %s..%s", text, ymd(dr.Start), ymd(dr.End))
		}
	}

	// Text order of the store filter must match calendar order.
	f := NewParser("antalya", r).Parse("önümüzdeki 3000000 gün konser").Filter(0)
	if f.DateFrom > f.DateTo {
		t.Fatalf("inverted filter %s..%s", f.DateFrom, f.DateTo)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := fixedResolver(2026, time.October, 18)
	for _, text := range []string{"", "merhaba", "konser var mı", "45 gün sonra"} {
		if dr, ok := r.Resolve(text); ok {
			t.Errorf("%q: unexpected match %s..%s", text, ymd(dr.Start), ymd(dr.End))
		}
	}
}

func TestResolve_MonthTableOrderWins(t *testing.T) {
	r := fixedResolver(2026, time.October, 18)
	// "aralık" is mentioned first but "ocak" comes first in the month table.
	dr, ok := r.Resolve("aralık ya da ocak")
	if !ok || ymd(dr.Start) != "2027-01-01" || ymd(dr.End) != "2027-01-31" {
		t.Fatalf("got %s..%s ok=%v", ymd(dr.Start), ymd(dr.End), ok)
	}
}

func TestResolve_LeapDay(t *testing.T) {
	// 2027 is not a leap year, so 29 şubat falls through to the month rule.
	r := fixedResolver(2026, time.October, 18)
	dr, ok := r.Resolve("29 şubat")
	if !ok || r.Rule("29 şubat") != "month" {
		t.Fatalf("expected month fallback, got rule %q", r.Rule("29 şubat"))
	}
	if ymd(dr.Start) != "2027-02-01" || ymd(dr.End) != "2027-02-28" {
		t.Fatalf("got %s..%s", ymd(dr.Start), ymd(dr.End))
	}

	// Before 29 Feb of a leap year the explicit rule applies.
	r = fixedResolver(2028, time.January, 10)
	dr, ok = r.Resolve("29 şubat")
	if !ok || ymd(dr.Start) != "2028-02-29" {
		t.Fatalf("got %s ok=%v", ymd(dr.Start), ok)
	}
}

func TestResolve_WeekendAlwaysSaturdaySunday(t *testing.T) {
	for d := 10; d <= 24; d++ {
		r := fixedResolver(2026, time.October, d)
		dr, ok := r.Resolve("bu hafta sonu")
		if !ok {
			t.Fatalf("day %d: no match", d)
		}
		if dr.Start.Weekday() != time.Saturday {
			t.Errorf("day %d: start %s is %s", d, ymd(dr.Start), dr.Start.Weekday())
		}
		if !dr.End.Equal(dr.Start.AddDate(0, 0, 1)) {
			t.Errorf("day %d: end %s is not start+1", d, ymd(dr.End))
		}
		today := r.Today()
		if dr.Start.Before(today) || dr.Start.Sub(today) > 6*24*time.Hour {
			t.Errorf("day %d: saturday %s not within the coming week", d, ymd(dr.Start))
		}
	}

	// Saturday resolves to itself.
	r := fixedResolver(2026, time.October, 17)
	dr, _ := r.Resolve("haftasonu")
	if ymd(dr.Start) != "2026-10-17" || ymd(dr.End) != "2026-10-18" {
		t.Fatalf("got %s..%s", ymd(dr.Start), ymd(dr.End))
	}
}

func TestResolve_ThisWeekEndsOnSunday(t *testing.T) {
	// Wednesday
	r := fixedResolver(2026, time.October, 14)
	dr, ok := r.Resolve("bu hafta neler var")
	if !ok || ymd(dr.Start) != "2026-10-14" || ymd(dr.End) != "2026-10-18" {
		t.Fatalf("got %s..%s ok=%v", ymd(dr.Start), ymd(dr.End), ok)
	}
	// Monday
	r = fixedResolver(2026, time.October, 12)
	dr, _ = r.Resolve("bu hafta")
	if ymd(dr.End) != "2026-10-18" {
		t.Fatalf("got end %s", ymd(dr.End))
	}
}

func TestResolve_ExplicitDayProperty(t *testing.T) {
	// Before 19 October the current year is used, after it the next one.
	for _, day := range []int{1, 10, 19} {
		r := fixedResolver(2026, time.October, day)
		dr, _ := r.Resolve("19 ekim")
		if ymd(dr.Start) != "2026-10-19" || !dr.Start.Equal(dr.End) {
			t.Errorf("issued %d Oct: got %s", day, ymd(dr.Start))
		}
	}
	for _, day := range []int{20, 31} {
		r := fixedResolver(2026, time.October, day)
		dr, _ := r.Resolve("19 ekim")
		if ymd(dr.Start) != "2027-10-19" {
			t.Errorf("issued %d Oct: got %s", day, ymd(dr.Start))
		}
	}
}

func TestResolver_UsesLocationForToday(t *testing.T) {
	// 22:30 UTC on the 17th is already the 18th in Istanbul.
	now := time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)
	r := NewResolver(trt, func() time.Time { return now })
	if got := ymd(r.Today()); got != "2026-10-18" {
		t.Fatalf("today = %s", got)
	}
}
