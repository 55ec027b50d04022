package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_Find(t *testing.T) {
	s := NewMemoryStore(
		Event{Title: "late", City: "antalya", Category: CategoryMusic, Date: "2026-11-02"},
		Event{Title: "early", City: "antalya", Category: CategoryMusic, Date: "2026-10-19"},
		Event{Title: "play", City: "antalya", Category: CategoryTheater, Date: "2026-10-20"},
		Event{Title: "other", City: "izmir", Category: CategoryMusic, Date: "2026-10-20"},
	)
	ctx := context.Background()

	got, err := s.Find(ctx, Filter{City: "antalya", Category: CategoryMusic})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].Title != "early" || got[1].Title != "late" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got, _ = s.Find(ctx, Filter{City: "antalya", Category: CategoryAll, DateFrom: "2026-10-19", DateTo: "2026-10-20"})
	if len(got) != 2 {
		t.Fatalf("inclusive range expected 2 events, got %d", len(got))
	}

	got, _ = s.Find(ctx, Filter{Limit: 1})
	if len(got) != 1 || got[0].Title != "early" {
		t.Fatalf("limit not applied after sort: %+v", got)
	}
	for _, ev := range got {
		if ev.ID == "" {
			t.Fatalf("missing id")
		}
	}
}

func TestMemoryStore_CountDistinctDelete(t *testing.T) {
	s := NewMemoryStore(SampleEvents("antalya", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))...)
	ctx := context.Background()

	n, err := s.Count(ctx, Filter{})
	if err != nil || n != 7 {
		t.Fatalf("count = %d, %v", n, err)
	}
	cats, err := s.Distinct(ctx, "category")
	if err != nil || len(cats) != len(Categories) {
		t.Fatalf("distinct categories = %v, %v", cats, err)
	}
	if _, err := s.Distinct(ctx, "venue"); err == nil {
		t.Fatalf("expected error for unsupported field")
	}
	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.Count(ctx, Filter{}); n != 0 {
		t.Fatalf("want empty store, got %d", n)
	}
}

func TestMemoryStore_Editor(t *testing.T) {
	s := NewMemoryStore(Event{ID: "a", Title: "Hamlet", City: "antalya", Category: CategoryTheater, Date: "2026-10-24"})
	ctx := context.Background()

	created, err := s.Create(ctx, Event{Title: "Sergi", City: "antalya", Category: CategoryExhibition, Date: "2026-11-02"})
	if err != nil || created.ID == "" {
		t.Fatalf("create: %+v %v", created, err)
	}
	got, err := s.FindByID(ctx, created.ID)
	if err != nil || got.Title != "Sergi" {
		t.Fatalf("find by id: %+v %v", got, err)
	}

	got.Title = "Resim Sergisi"
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := s.FindByID(ctx, created.ID); got.Title != "Resim Sergisi" {
		t.Fatalf("update not stored: %+v", got)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.Count(ctx, Filter{}); n != 1 {
		t.Fatalf("want 1 event left, got %d", n)
	}

	for name, err := range map[string]error{
		"find":   func() error { _, err := s.FindByID(ctx, "a"); return err }(),
		"update": s.Update(ctx, Event{ID: "missing", Title: "x"}),
		"delete": s.Delete(ctx, "a"),
		"empty":  s.Delete(ctx, ""),
	} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: want ErrNotFound, got %v", name, err)
		}
	}
}

func TestUnavailable(t *testing.T) {
	var s Store = Unavailable{Err: errors.New("dial tcp: refused")}
	if _, err := s.Find(context.Background(), Filter{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if _, err := s.Count(context.Background(), Filter{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if _, ok := s.(Editor); ok {
		t.Fatalf("unavailable store must be read-only")
	}
}
