package history

import (
	"testing"
	"time"

	"github.com/horacebramwell/voe-go/internal/domain"
)

func TestBoltStoreRecordsAndListsUploads(t *testing.T) {
	dir := t.TempDir()

	storeRaw, err := openBolt(dir+"/history.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	base := time.Now().Add(-time.Minute).UTC()
	for i, name := range []string{"first.mp4", "second.mp4", "third.mp4"} {
		up := domain.Upload{
			Kind:        domain.KindFile,
			FileName:    name,
			SizeBytes:   int64(100 * (i + 1)),
			CompletedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.RecordUpload(up); err != nil {
			t.Fatalf("RecordUpload %s: %v", name, err)
		}
	}

	uploads, err := store.RecentUploads(2)
	if err != nil {
		t.Fatalf("RecentUploads: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	if uploads[0].FileName != "third.mp4" || uploads[1].FileName != "second.mp4" {
		t.Fatalf("expected newest-first order, got %q then %q", uploads[0].FileName, uploads[1].FileName)
	}
	if uploads[0].SizeBytes != 300 {
		t.Fatalf("expected newest upload size 300, got %d", uploads[0].SizeBytes)
	}
}

func TestBoltStoreExpiresOldEntries(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		EntryTTL:        1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/history.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	old := domain.Upload{
		Kind:        domain.KindRemote,
		SourceURL:   "https://example.com/old.mp4",
		CompletedAt: time.Now().Add(-time.Hour).UTC(),
	}
	if err := store.RecordUpload(old); err != nil {
		t.Fatalf("RecordUpload old: %v", err)
	}

	// Fast-forward the cleanup cadence so the next write prunes aged entries.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())

	fresh := domain.Upload{Kind: domain.KindFile, FileName: "fresh.mp4"}
	if err := store.RecordUpload(fresh); err != nil {
		t.Fatalf("RecordUpload fresh: %v", err)
	}

	uploads, err := store.RecentUploads(10)
	if err != nil {
		t.Fatalf("RecentUploads: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("expected aged entry to be pruned, got %d uploads", len(uploads))
	}
	if uploads[0].FileName != "fresh.mp4" {
		t.Fatalf("expected only fresh upload to remain, got %q", uploads[0].FileName)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.RecordUpload(domain.Upload{Kind: domain.KindFile}); err != nil {
		t.Fatalf("noop store RecordUpload: %v", err)
	}
	uploads, err := store.RecentUploads(5)
	if err != nil || uploads != nil {
		t.Fatalf("noop store RecentUploads: uploads=%v err=%v", uploads, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported history type")
	}
}
