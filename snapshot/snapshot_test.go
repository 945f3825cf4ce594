package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/markpost/post"
)

func sampleSnapshot() post.Snapshot {
	created := time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.UTC)
	return post.Snapshot{
		NextID: 5,
		Posts: []post.Post{
			{ID: 1, Title: "First", Author: "Ada", Content: "# One\n\nbody", ReadTime: "1 min read", CreatedAt: created},
			{ID: 4, Title: "Fourth", Author: "Grace", Content: "<b>raw</b> *md*", ReadTime: "1 min read", CreatedAt: created.Add(time.Hour)},
		},
	}
}

func assertSnapshotEqual(t *testing.T, got, want post.Snapshot) {
	t.Helper()
	if got.NextID != want.NextID {
		t.Errorf("NextID = %d, want %d", got.NextID, want.NextID)
	}
	if len(got.Posts) != len(want.Posts) {
		t.Fatalf("len(Posts) = %d, want %d", len(got.Posts), len(want.Posts))
	}
	for i := range want.Posts {
		g, w := got.Posts[i], want.Posts[i]
		if g.ID != w.ID || g.Title != w.Title || g.Author != w.Author || g.Content != w.Content || g.ReadTime != w.ReadTime {
			t.Errorf("Posts[%d] = %+v, want %+v", i, g, w)
		}
		if !g.CreatedAt.Equal(w.CreatedAt) {
			t.Errorf("Posts[%d].CreatedAt = %v, want %v", i, g.CreatedAt, w.CreatedAt)
		}
	}
}

func roundTrip(t *testing.T, target post.Snapshotter) {
	t.Helper()
	ctx := context.Background()

	empty, err := target.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty target failed: %v", err)
	}
	if len(empty.Posts) != 0 {
		t.Fatalf("empty target returned %d posts", len(empty.Posts))
	}

	want := sampleSnapshot()
	if err := target.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := target.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSnapshotEqual(t, got, want)

	// A later save replaces everything, including removed posts.
	want.Posts = want.Posts[:1]
	want.NextID = 6
	if err := target.Save(ctx, want); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = target.Load(ctx)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	assertSnapshotEqual(t, got, want)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "posts.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()
	roundTrip(t, s)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSnapshotEqual(t, got, sampleSnapshot())
}

func TestJSONFileRoundTrip(t *testing.T) {
	f, err := NewJSONFile(filepath.Join(t.TempDir(), "nested", "posts.json"))
	if err != nil {
		t.Fatalf("NewJSONFile failed: %v", err)
	}
	roundTrip(t, f)
	if _, err := os.Stat(f.Path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file should be renamed away, stat err = %v", err)
	}
}

func TestJSONFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, _ := NewJSONFile(path)
	if _, err := f.Load(context.Background()); err == nil {
		t.Error("expected error loading a corrupt snapshot")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "loki", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), DriverPostgres, ""); err == nil {
		t.Error("expected error for postgres without url")
	}
}

func TestOpenJSON(t *testing.T) {
	target, err := Open(context.Background(), DriverJSON, filepath.Join(t.TempDir(), "posts.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := target.(*JSONFile); !ok {
		t.Errorf("Open(json) returned %T", target)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("MARKPOST_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MARKPOST_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer s.Close()
	if _, err := s.pool.Exec(ctx, `TRUNCATE markpost_posts, markpost_meta`); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	roundTrip(t, s)
}
