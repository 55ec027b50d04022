// Package answer turns retrieved events into the text sent to the user.
package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"etkinlik-bot/internal/events"
	"etkinlik-bot/internal/metrics"
)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const descriptionLimit = 100

// Composer writes the answer for a set of retrieved events, preferring the
// generator and falling back to the template.
type Composer struct {
	gen      Generator
	cityName string
	metrics  *metrics.Metrics
}

// NewComposer returns a composer. gen may be nil, in which case every answer
// is templated.
func NewComposer(gen Generator, cityName string, m *metrics.Metrics) *Composer {
	return &Composer{gen: gen, cityName: cityName, metrics: m}
}

func (c *Composer) CityName() string { return c.cityName }

// Compose returns the answer text and whether it came from the generator.
func (c *Composer) Compose(ctx context.Context, question string, evs []events.Event) (string, bool) {
	if len(evs) == 0 {
		return NoResults(c.cityName), false
	}
	if c.gen != nil {
		text, err := c.gen.Generate(ctx, c.Prompt(question, evs))
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return text, true
		}
		if err == nil {
			err = fmt.Errorf("empty generation")
		}
		c.metrics.GenerationFailed()
		log.Printf("⚠️ Generation failed, using template: %v", err)
	}
	return RenderEvents(c.cityName, evs), false
}

// Context renders the event block given to the generator.
func Context(evs []events.Event) string {
	var b strings.Builder
	b.WriteString("İlgili Etkinlikler:\n\n")
	for i, ev := range evs {
		title := ev.Title
		if title == "" {
			title = "Etkinlik"
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		if ev.Date != "" {
			b.WriteString("   Tarih: " + ev.Date + "\n")
		}
		if ev.Venue != "" {
			b.WriteString("   Yer: " + ev.Venue + "\n")
		}
		if ev.City != "" {
			b.WriteString("   Şehir: " + ev.City + "\n")
		}
		if ev.URL != "" {
			b.WriteString("   Link: " + ev.URL + "\n")
		}
		if ev.Price != "" {
			b.WriteString("   Fiyat: " + ev.Price + "\n")
		}
		if ev.Description != "" {
			b.WriteString("   Açıklama: " + truncateRunes(ev.Description, descriptionLimit) + "...\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Prompt builds the full generation prompt for question.
func (c *Composer) Prompt(question string, evs []events.Event) string {
	city := c.cityName
	return fmt.Sprintf(`Sen %[1]s Etkinlik Botu'sun, %[1]s'daki etkinliklerin uzmanı bir asistansın.
Doğal, samimi ve yardımsever bir Türkçe konuşma tarzın var.

Kullanıcının sorusuna aşağıdaki etkinlik bilgilerine dayanarak yanıt ver:

%[2]s

Kullanıcı Sorusu: %[3]s

Yanıt Kuralları:
- Doğal, samimi ve yardımsever ol
- Emoji kullan (🎭🎵🎬🎨)
- Her etkinlik yeni satırda
- Etkinlik adını [Etkinlik İsmi](link) formatında markdown link yap (eğer link varsa)
- Tarih, yer ve fiyat bilgilerini paylaş
- Kullanıcıya soru sor (ilgi alanlarını keşfet)
- %[1]s'ya özel odaklan

Yanıt:`, city, Context(evs), question)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
