package query

import (
	"strings"

	"etkinlik-bot/internal/events"
)

type categoryKeyword struct {
	keyword  string
	category string
}

// categoryKeywords is scanned in declaration order; the first keyword found
// anywhere in the text decides the category.
var categoryKeywords = []categoryKeyword{
	{"konser", events.CategoryMusic},
	{"müzik", events.CategoryMusic},
	{"concert", events.CategoryMusic},
	{"tiyatro", events.CategoryTheater},
	{"oyun", events.CategoryTheater},
	{"theater", events.CategoryTheater},
	{"sergi", events.CategoryExhibition},
	{"galeri", events.CategoryExhibition},
	{"müze", events.CategoryExhibition},
	{"workshop", events.CategoryWorkshop},
	{"atölye", events.CategoryWorkshop},
	{"eğitim", events.CategoryWorkshop},
	{"seminer", events.CategoryWorkshop},
	{"spor", events.CategorySports},
	{"maç", events.CategorySports},
	{"futbol", events.CategorySports},
	{"basketbol", events.CategorySports},
	{"sinema", events.CategoryCinema},
	{"film", events.CategoryCinema},
	{"movie", events.CategoryCinema},
}

// Classify maps text to an event category, or events.CategoryAll.
func Classify(text string) string {
	t := Normalize(text)
	for _, kw := range categoryKeywords {
		if strings.Contains(t, kw.keyword) {
			return kw.category
		}
	}
	return events.CategoryAll
}
