package query

import (
	"testing"
	"time"

	"etkinlik-bot/internal/events"
)

func TestClassify(t *testing.T) {
	tests := map[string]string{
		"Bu hafta sonu konser var mı?": events.CategoryMusic,
		"workshop eğitimi":             events.CategoryWorkshop,
		"merhaba":                      events.CategoryAll,
		"":                             events.CategoryAll,
		"Müze gezisi":                  events.CategoryExhibition,
		"TİYATRO":                      events.CategoryTheater,
		"basketbol maçı":               events.CategorySports,
		"film izlemek istiyorum":       events.CategoryCinema,
		// müzik precedes film in the keyword table
		"film müziği konseri": events.CategoryMusic,
		// oyun precedes futbol
		"futbol oyunu": events.CategoryTheater,
	}
	for text, want := range tests {
		if got := Classify(text); got != want {
			t.Errorf("Classify(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  İZMİR Bugün "); got != "izmir bugün" {
		t.Fatalf("got %q", got)
	}
}

func TestParser_Defaults(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, trt)
	p := NewParser("Antalya", NewResolver(trt, func() time.Time { return now }))

	c := p.Parse("selam, ne var ne yok")
	if c.City != "antalya" || c.Category != events.CategoryAll {
		t.Fatalf("unexpected constraints: %+v", c)
	}
	if ymd(c.DateStart) != "2026-10-18" || ymd(c.DateEnd) != "2026-11-17" || c.DateRule != "" {
		t.Fatalf("default window wrong: %s..%s (%s)", ymd(c.DateStart), ymd(c.DateEnd), c.DateRule)
	}

	c = p.Parse("Bu hafta sonu konser var mı?")
	if c.Category != events.CategoryMusic || ymd(c.DateStart) != "2026-10-24" || c.DateRule != "weekend" {
		t.Fatalf("unexpected constraints: %+v", c)
	}
	if c.DateStart.After(c.DateEnd) {
		t.Fatalf("start after end")
	}

	f := c.Filter(20)
	if f.City != "antalya" || f.Category != "music" || f.DateFrom != "2026-10-24" || f.DateTo != "2026-10-25" || f.Limit != 20 {
		t.Fatalf("unexpected filter: %+v", f)
	}
}
