// Package query turns a free-text Turkish question into search constraints.
package query

import (
	"strings"
	"time"

	"etkinlik-bot/internal/events"
)

// DefaultWindowDays is the forward window used when no date phrase is found.
const DefaultWindowDays = 30

// Normalize lowercases text for keyword matching. Dotted capital İ is mapped
// to plain i first so "İzmir" and "izmir" compare equal.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "İ", "i")
	return strings.ToLower(strings.TrimSpace(text))
}

// Constraints are the structured filters derived from a question.
type Constraints struct {
	City      string    `json:"city"`
	Category  string    `json:"category"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
	// DateRule names the temporal rule that matched; empty for the default window.
	DateRule string `json:"date_rule,omitempty"`
}

// Filter converts c into a store filter with an optional limit.
func (c Constraints) Filter(limit int) events.Filter {
	return events.Filter{
		City:     c.City,
		Category: c.Category,
		DateFrom: c.DateStart.Format(events.DateLayout),
		DateTo:   c.DateEnd.Format(events.DateLayout),
		Limit:    limit,
	}
}

// Parser combines the date resolver and the category classifier for a
// single configured city.
type Parser struct {
	city     string
	resolver *Resolver
}

func NewParser(city string, resolver *Resolver) *Parser {
	return &Parser{city: strings.ToLower(city), resolver: resolver}
}

func (p *Parser) Resolver() *Resolver { return p.resolver }

// Parse never fails: unknown categories become "all" and missing dates become
// today through today+30.
func (p *Parser) Parse(text string) Constraints {
	c := Constraints{
		City:     p.city,
		Category: Classify(text),
	}
	dr, rule, ok := p.resolver.resolveNamed(Normalize(text))
	if !ok {
		today := p.resolver.Today()
		dr = DateRange{Start: today, End: today.AddDate(0, 0, DefaultWindowDays)}
	}
	c.DateStart, c.DateEnd, c.DateRule = dr.Start, dr.End, rule
	return c
}
