package textcache

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "texts.db"), ttl)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t, time.Hour)

	in := Entry{
		Text:         "Page one.\nPage two.",
		ContentType:  "application/pdf",
		PageCount:    9,
		PagesRead:    2,
		SkippedPages: []int{3},
	}
	if err := c.Put("https://arxiv.org/pdf/1", 4, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get("https://arxiv.org/pdf/1", 4)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Text != in.Text || got.PageCount != 9 || got.PagesRead != 2 {
		t.Errorf("unexpected entry %+v", got)
	}
	if !reflect.DeepEqual(got.SkippedPages, []int{3}) {
		t.Errorf("expected skipped pages [3], got %v", got.SkippedPages)
	}
	if got.StoredAt.IsZero() {
		t.Error("expected StoredAt to be stamped")
	}
}

func TestCache_KeyIncludesPageBound(t *testing.T) {
	c := openTestCache(t, time.Hour)
	if err := c.Put("https://a.org/x.pdf", 4, Entry{Text: "four"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok, _ := c.Get("https://a.org/x.pdf", 10); ok {
		t.Error("a different page bound must miss")
	}
	if Key("u", 1) == Key("u", 2) || Key("u1", 0) == Key("u", 10) {
		t.Error("expected distinct keys")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := openTestCache(t, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Put("https://a.org/old", 0, Entry{Text: "old"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(30 * time.Second)
	if err := c.Put("https://a.org/new", 0, Entry{Text: "new"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(45 * time.Second)
	if _, ok, _ := c.Get("https://a.org/old", 0); ok {
		t.Error("expected expired entry to miss")
	}
	if _, ok, _ := c.Get("https://a.org/new", 0); !ok {
		t.Error("expected fresh entry to hit")
	}

	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned entry, got %d", removed)
	}
}

func TestCache_NoTTLKeepsEntries(t *testing.T) {
	c := openTestCache(t, 0)
	c.now = func() time.Time { return time.Unix(0, 0) }
	if err := c.Put("https://a.org/x", 0, Entry{Text: "x"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	if _, ok, _ := c.Get("https://a.org/x", 0); !ok {
		t.Error("expected hit with ttl disabled")
	}
	if removed, _ := c.Prune(); removed != 0 {
		t.Errorf("expected nothing pruned, got %d", removed)
	}
}

func TestCache_Miss(t *testing.T) {
	c := openTestCache(t, time.Hour)
	got, ok, err := c.Get("https://nowhere", 1)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if got.Text != "" {
		t.Errorf("expected zero entry, got %+v", got)
	}
}
