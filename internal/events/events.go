package events

import (
	"context"
	"errors"
)

// Categories in the order they are presented to users.
const (
	CategoryMusic      = "music"
	CategoryTheater    = "theater"
	CategoryExhibition = "exhibition"
	CategoryWorkshop   = "workshop"
	CategorySports     = "sports"
	CategoryCinema     = "cinema"

	// CategoryAll disables category filtering.
	CategoryAll = "all"
)

// DateLayout is the ISO calendar date layout used for Event.Date and filters.
const DateLayout = "2006-01-02"

var Categories = []string{
	CategoryMusic,
	CategoryTheater,
	CategoryExhibition,
	CategoryWorkshop,
	CategorySports,
	CategoryCinema,
}

var (
	// ErrUnavailable is returned by stores that cannot reach their backend.
	ErrUnavailable = errors.New("event store unavailable")
	// ErrNotFound is returned when no event has the requested ID.
	ErrNotFound = errors.New("event not found")
)

// Event is a single local event as stored by the ingestion pipeline.
// The ingestion side guarantees a non-empty title, an ISO date, a lowercase
// city and a known category; everything else may be empty.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	City        string   `json:"city"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	Address     string   `json:"address,omitempty"`
	Price       string   `json:"price,omitempty"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Organizer   string   `json:"organizer,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Filter narrows a Find or Count call. Empty fields do not filter.
// Category "all" is treated as empty. DateFrom and DateTo are inclusive
// ISO dates compared lexically, which matches calendar order.
type Filter struct {
	City     string
	Category string
	DateFrom string
	DateTo   string
	Limit    int
}

// Store is the read side of the event database.
// Find returns events sorted by date ascending.
// Implementations must be safe for concurrent use.
type Store interface {
	Find(ctx context.Context, f Filter) ([]Event, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Distinct(ctx context.Context, field string) ([]string, error)
}

// Writer is the write side used by seeding and tests.
type Writer interface {
	InsertMany(ctx context.Context, evs []Event) error
	DeleteAll(ctx context.Context) error
}

// Editor manages single events by ID. Create assigns an ID when ev.ID is
// empty and returns the stored event.
type Editor interface {
	Create(ctx context.Context, ev Event) (Event, error)
	FindByID(ctx context.Context, id string) (Event, error)
	Update(ctx context.Context, ev Event) error
	Delete(ctx context.Context, id string) error
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

func (f Filter) categoryValue() string {
	if f.Category == CategoryAll {
		return ""
	}
	return f.Category
}

// Matches reports whether ev satisfies every non-empty field of f.
func (f Filter) Matches(ev Event) bool {
	if f.City != "" && ev.City != f.City {
		return false
	}
	if c := f.categoryValue(); c != "" && ev.Category != c {
		return false
	}
	if f.DateFrom != "" && ev.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && ev.Date > f.DateTo {
		return false
	}
	return true
}

// SearchableText is the surrogate text embedded for semantic retrieval.
func (ev Event) SearchableText() string {
	return ev.Title + " " + ev.Description + " " + ev.City + " " + ev.Category + " " + ev.Venue
}
