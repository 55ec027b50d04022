package answer

import (
	"fmt"
	"strings"
	"time"

	"etkinlik-bot/internal/events"
)

const separator = "─────────────────────"

var categoryEmoji = map[string]string{
	events.CategoryMusic:      "🎵",
	events.CategoryTheater:    "🎭",
	events.CategoryExhibition: "🖼️",
	events.CategoryWorkshop:   "🛠️",
	events.CategorySports:     "⚽",
	events.CategoryCinema:     "🎬",
}

const defaultEmoji = "🎪"

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var turkishWeekdays = [...]string{
	"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi",
}

// CategoryEmoji returns the emoji shown next to events of category c.
func CategoryEmoji(c string) string {
	if e, ok := categoryEmoji[c]; ok {
		return e
	}
	return defaultEmoji
}

// FormatDate renders an ISO date as "19 Ekim 2026, Pazartesi". Unparseable
// input is returned unchanged.
func FormatDate(iso string) string {
	d, err := time.Parse(events.DateLayout, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d %s %d, %s", d.Day(), turkishMonths[d.Month()-1], d.Year(), turkishWeekdays[d.Weekday()])
}

// NoResults is the reply used when nothing matched.
func NoResults(cityName string) string {
	return "😔 Üzgünüm, " + cityName + " için belirttiğin kriterlerde etkinlik bulamadım.\n\n" +
		"💡 Farklı bir tarih veya kategori dene!\n\n" +
		"📝 Örnek: \"Bu hafta sonu konser var mı?\" veya \"Kasım ayı etkinlikleri\""
}

// Apology is the reply used when every tier failed.
const Apology = "⚠️ Üzgünüm, bir hata oluştu. Lütfen tekrar dener misin?"

// RenderEvents builds the templated Markdown list. It never fails and
// produces one numbered entry per event.
func RenderEvents(cityName string, evs []events.Event) string {
	if len(evs) == 0 {
		return NoResults(cityName)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 %d etkinlik buldum:\n\n", len(evs))
	b.WriteString(separator + "\n\n")
	for i, ev := range evs {
		fmt.Fprintf(&b, "%s *%d. %s*\n", CategoryEmoji(ev.Category), i+1, ev.Title)
		if ev.Date != "" {
			b.WriteString("   📅 " + FormatDate(ev.Date))
			if ev.Time != "" {
				b.WriteString(" - " + ev.Time)
			}
			b.WriteString("\n")
		}
		if ev.Venue != "" {
			b.WriteString("   📍 " + ev.Venue + "\n")
		}
		if ev.Price != "" {
			b.WriteString("   💰 " + ev.Price + "\n")
		}
		if ev.URL != "" {
			b.WriteString("   🔗 [Detaylar](" + ev.URL + ")\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(separator + "\n")
	b.WriteString("💡 Başka ne aramak istersin?")
	return b.String()
}
