package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is an inclusive range of civil dates. Start and End are
// midnights in the resolver's location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MaxYear is the last year a resolved range may reach.
const MaxYear = 9999

type monthName struct {
	name  string
	month time.Month
}

// months is scanned in this order by the month-only rule; the first entry
// found in the text wins regardless of position.
var months = []monthName{
	{"ocak", time.January},
	{"şubat", time.February},
	{"subat", time.February},
	{"mart", time.March},
	{"nisan", time.April},
	{"mayıs", time.May},
	{"mayis", time.May},
	{"haziran", time.June},
	{"temmuz", time.July},
	{"ağustos", time.August},
	{"agustos", time.August},
	{"eylül", time.September},
	{"eylul", time.September},
	{"ekim", time.October},
	{"kasım", time.November},
	{"kasim", time.November},
	{"aralık", time.December},
	{"aralik", time.December},
}

var (
	explicitDayRe  = regexp.MustCompile(`(\d{1,2})\s+(ocak|şubat|subat|mart|nisan|mayıs|mayis|haziran|temmuz|ağustos|agustos|eylül|eylul|ekim|kasım|kasim|aralık|aralik)`)
	relativeDaysRe = regexp.MustCompile(`(?:önümüzdeki|onumuzdeki|gelecek)\s+(\d+)\s+(?:gün|gun)`)
)

func monthByName(name string) (time.Month, bool) {
	for _, m := range months {
		if m.name == name {
			return m.month, true
		}
	}
	return 0, false
}

type rule struct {
	name    string
	resolve func(text string, today time.Time) (DateRange, bool)
}

// Resolver turns Turkish temporal phrases into date ranges.
// Rules are evaluated in order and the first match wins.
type Resolver struct {
	loc   *time.Location
	now   func() time.Time
	rules []rule
}

// NewResolver returns a resolver for loc. A nil now uses time.Now.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		loc: loc,
		now: now,
		rules: []rule{
			{"explicit_day", explicitDay},
			{"month", monthOnly},
			{"weekend", weekend},
			{"today", keywordDay(0, "bugün", "bugun")},
			{"tomorrow", keywordDay(1, "yarın", "yarin")},
			{"this_week", thisWeek},
			{"relative_days", relativeDays},
		},
	}
}

// Today returns the current civil date in the resolver's location.
func (r *Resolver) Today() time.Time {
	n := r.now().In(r.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, r.loc)
}

func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve returns the range named by text and true, or false when no rule
// matches.
func (r *Resolver) Resolve(text string) (DateRange, bool) {
	dr, _, ok := r.resolveNamed(Normalize(text))
	return dr, ok
}

// Rule reports which rule matched text, or "" when none did.
func (r *Resolver) Rule(text string) string {
	_, name, _ := r.resolveNamed(Normalize(text))
	return name
}

func (r *Resolver) resolveNamed(normalized string) (DateRange, string, bool) {
	today := r.Today()
	for _, rl := range r.rules {
		if dr, ok := rl.resolve(normalized, today); ok {
			return dr, rl.name, true
		}
	}
	return DateRange{}, "", false
}

func single(d time.Time) DateRange { return DateRange{Start: d, End: d} }

// civil builds year-month-day and reports false when time.Date had to
// normalize it, e.g. 31 November or 29 February of a non-leap year.
func civil(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return d, d.Year() == year && d.Month() == month && d.Day() == day
}

func explicitDay(text string, today time.Time) (DateRange, bool) {
	m := explicitDayRe.FindStringSubmatch(text)
	if m == nil {
		return DateRange{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return DateRange{}, false
	}
	month, ok := monthByName(m[2])
	if !ok {
		return DateRange{}, false
	}
	d, ok := civil(today.Year(), month, day, today.Location())
	if !ok {
		return DateRange{}, false
	}
	if d.Before(today) {
		d, ok = civil(today.Year()+1, month, day, today.Location())
		if !ok {
			return DateRange{}, false
		}
	}
	return single(d), true
}

func monthOnly(text string, today time.Time) (DateRange, bool) {
	for _, m := range months {
		if !strings.Contains(text, m.name) {
			continue
		}
		year := today.Year()
		if m.month < today.Month() {
			year++
		}
		start := time.Date(year, m.month, 1, 0, 0, 0, 0, today.Location())
		end := start.AddDate(0, 1, -1)
		return DateRange{Start: start, End: end}, true
	}
	return DateRange{}, false
}

func weekend(text string, today time.Time) (DateRange, bool) {
	if !strings.Contains(text, "bu hafta sonu") && !strings.Contains(text, "haftasonu") {
		return DateRange{}, false
	}
	untilSaturday := (int(time.Saturday) - int(today.Weekday()) + 7) % 7
	saturday := today.AddDate(0, 0, untilSaturday)
	return DateRange{Start: saturday, End: saturday.AddDate(0, 0, 1)}, true
}

func keywordDay(offset int, words ...string) func(string, time.Time) (DateRange, bool) {
	return func(text string, today time.Time) (DateRange, bool) {
		for _, w := range words {
			if strings.Contains(text, w) {
				return single(today.AddDate(0, 0, offset)), true
			}
		}
		return DateRange{}, false
	}
}

func thisWeek(text string, today time.Time) (DateRange, bool) {
	if !strings.Contains(text, "bu hafta") {
		return DateRange{}, false
	}
	// Monday-based weekday: Monday 0 ... Sunday 6.
	wd := (int(today.Weekday()) + 6) % 7
	return DateRange{Start: today, End: today.AddDate(0, 0, 6-wd)}, true
}

func relativeDays(text string, today time.Time) (DateRange, bool) {
	m := relativeDaysRe.FindStringSubmatch(text)
	if m == nil {
		return DateRange{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DateRange{}, false
	}
	return DateRange{Start: today, End: addDaysClamped(today, n)}, true
}

// addDaysClamped adds n days to day without passing the last date that still
// formats as a four-digit year. Stores compare dates as text, so a five-digit
// year would sort before today.
func addDaysClamped(day time.Time, n int) time.Time {
	last := time.Date(MaxYear, time.December, 31, 0, 0, 0, 0, day.Location())
	if n > 366*(MaxYear-day.Year()+1) {
		return last
	}
	if end := day.AddDate(0, 0, n); !end.After(last) {
		return end
	}
	return last
}
