package mongostore

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"etkinlik-bot/internal/events"
)

func TestBuildFilter(t *testing.T) {
	q := buildFilter(events.Filter{City: "antalya", Category: "music", DateFrom: "2026-10-18", DateTo: "2026-10-25"})
	if q["city"] != "antalya" || q["category"] != "music" {
		t.Fatalf("unexpected equality terms: %v", q)
	}
	date, ok := q["date"].(bson.M)
	if !ok {
		t.Fatalf("date range missing: %v", q)
	}
	if date["$gte"] != "2026-10-18" || date["$lte"] != "2026-10-25" {
		t.Fatalf("unexpected date range: %v", date)
	}
}

func TestBuildFilter_AllCategoryAndEmpty(t *testing.T) {
	q := buildFilter(events.Filter{City: "antalya", Category: events.CategoryAll})
	if _, ok := q["category"]; ok {
		t.Fatalf("category all must not filter: %v", q)
	}
	if _, ok := q["date"]; ok {
		t.Fatalf("no date bounds expected: %v", q)
	}
	if len(buildFilter(events.Filter{})) != 0 {
		t.Fatalf("empty filter must match everything")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	ev := events.Event{ID: id.Hex(), Title: "Hamlet", City: "antalya", Category: "theater", Date: "2026-10-21", Tags: []string{"tiyatro"}}
	d := fromEvent(ev, time.Now())
	if d.ID != id {
		t.Fatalf("object id not preserved")
	}
	got := d.event()
	if got.ID != ev.ID || got.Title != ev.Title || len(got.Tags) != 1 {
		t.Fatalf("unexpected event: %+v", got)
	}

	if fromEvent(events.Event{ID: "not-hex"}, time.Now()).ID != primitive.NilObjectID {
		t.Fatalf("non-hex ids must be left for the server to assign")
	}
}

func TestObjectIDAndUpdateFields(t *testing.T) {
	if _, err := objectID("42"); !errors.Is(err, events.ErrNotFound) {
		t.Fatalf("non-hex id must read as not found, got %v", err)
	}
	id := primitive.NewObjectID()
	if got, err := objectID(id.Hex()); err != nil || got != id {
		t.Fatalf("objectID(%s) = %v, %v", id.Hex(), got, err)
	}

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	set := updateFields(events.Event{ID: id.Hex(), Title: "Hamlet", City: "antalya", Date: "2026-10-21"}, now)
	if set["title"] != "Hamlet" || set["updated_at"] != now {
		t.Fatalf("unexpected $set: %v", set)
	}
	if _, ok := set["created_at"]; ok {
		t.Fatalf("update must keep created_at")
	}
	if _, ok := set["_id"]; ok {
		t.Fatalf("update must not touch _id")
	}
}
