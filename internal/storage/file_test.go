package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "log.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	it1 := Interaction{Timestamp: time.Unix(1, 0).UTC(), UserID: 1, Channel: ChannelTelegram, UserMessage: "konser", AssistantResponse: "🎉 1 etkinlik buldum", Tier: "keyword", SourceCount: 1}
	it2 := Interaction{Timestamp: time.Unix(2, 0).UTC(), UserID: 2, Channel: ChannelHTTP, UserMessage: "tiyatro", AssistantResponse: "😔", Tier: "none"}
	if err := rec.AppendInteraction(it1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendInteraction(it2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	got, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if got[0].UserID != 1 || got[1].UserID != 2 || got[0].Tier != "keyword" || got[0].SourceCount != 1 {
		t.Fatalf("order mismatch: %+v", got)
	}

	// ensure file exists and non-empty
	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsCorruptLinesAndConcurrentAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "log.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	if err := os.WriteFile(p, []byte("{not json\n\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = rec.AppendInteraction(Interaction{UserID: int64(i), UserMessage: "q"})
		}(i)
	}
	wg.Wait()

	got, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("want 20 interactions, got %d", len(got))
	}
}
