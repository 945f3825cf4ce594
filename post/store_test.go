package post

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memSnapshotter keeps the last saved snapshot in memory.
type memSnapshotter struct {
	mu      sync.Mutex
	snap    Snapshot
	saves   int
	loadErr error
	saveErr error
}

func (m *memSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Snapshot{}, m.loadErr
	}
	return m.snap, nil
}

func (m *memSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.saves++
	return nil
}

func (m *memSnapshotter) Close() error { return nil }

func (m *memSnapshotter) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// fixedClock returns the same instant until advanced.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func setupTestStore(t *testing.T) (*Store, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	return NewStore(WithClock(clock.now)), clock
}

func mustCreate(t *testing.T, s *Store, title, author, content string) Post {
	t.Helper()
	p, err := s.Create(Input{Title: title, Author: author, Content: content})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return p
}

func TestCreateAndGet(t *testing.T) {
	s, clock := setupTestStore(t)

	created := mustCreate(t, s, "Hello", "Ada", "# Hello\n\nFirst post.")
	if created.ID != 1 {
		t.Errorf("ID = %d, want 1", created.ID)
	}
	if !created.CreatedAt.Equal(clock.t) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, clock.t)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Hello" {
		t.Errorf("Title = %q, want %q", got.Title, "Hello")
	}
	if got.Author != "Ada" {
		t.Errorf("Author = %q, want %q", got.Author, "Ada")
	}
	if got.Content != "# Hello\n\nFirst post." {
		t.Errorf("Content = %q", got.Content)
	}
	if got.ReadTime != EstimateReadTime(got.Content) {
		t.Errorf("ReadTime = %q, want %q", got.ReadTime, EstimateReadTime(got.Content))
	}
}

func TestCreateKeepsFieldsUntrimmed(t *testing.T) {
	s, _ := setupTestStore(t)
	p := mustCreate(t, s, "  spaced  ", "Ada", "body")
	if p.Title != "  spaced  " {
		t.Errorf("Title = %q, want it stored as given", p.Title)
	}
}

func TestCreateAssignsFreshIDs(t *testing.T) {
	s, _ := setupTestStore(t)
	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		p := mustCreate(t, s, "T", "A", "C")
		if seen[p.ID] {
			t.Fatalf("id %d assigned twice", p.ID)
		}
		seen[p.ID] = true
	}
	s.Delete(5)
	p := mustCreate(t, s, "T", "A", "C")
	if p.ID != 6 {
		t.Errorf("ID after deleting the newest = %d, want 6", p.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	s, _ := setupTestStore(t)
	_, err := s.Create(Input{Title: "T", Author: " ", Content: "C"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after rejected create, want 0", s.Len())
	}
	if s.Revision() != 0 {
		t.Errorf("Revision = %d after rejected create, want 0", s.Revision())
	}
}

func TestGetNotFound(t *testing.T) {
	s, _ := setupTestStore(t)
	_, err := s.Get(42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	s, clock := setupTestStore(t)

	mustCreate(t, s, "oldest", "A", "C")
	clock.t = clock.t.Add(48 * time.Hour)
	mustCreate(t, s, "newest", "A", "C")
	clock.t = clock.t.Add(-24 * time.Hour)
	mustCreate(t, s, "middle", "A", "C")

	got := s.List()
	want := []string{"newest", "middle", "oldest"}
	if len(got) != len(want) {
		t.Fatalf("List returned %d posts, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("List()[%d].Title = %q, want %q", i, got[i].Title, want[i])
		}
	}
}

func TestListSameInstantNewestIDFirst(t *testing.T) {
	s, _ := setupTestStore(t)
	mustCreate(t, s, "first", "A", "C")
	mustCreate(t, s, "second", "A", "C")
	mustCreate(t, s, "third", "A", "C")

	got := s.List()
	if got[0].Title != "third" || got[2].Title != "first" {
		t.Errorf("List order = %q, %q, %q; want third, second, first", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestUpdate(t *testing.T) {
	s, clock := setupTestStore(t)
	orig := mustCreate(t, s, "Draft", "Ada", "short")
	clock.t = clock.t.Add(time.Hour)

	long := make([]byte, 0, 2500)
	for i := 0; i < 500; i++ {
		long = append(long, "word "...)
	}
	updated, err := s.Update(orig.ID, Input{Title: "Final", Author: "Grace", Content: string(long)})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != orig.ID {
		t.Errorf("ID = %d, want %d", updated.ID, orig.ID)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", orig.CreatedAt, updated.CreatedAt)
	}
	if updated.ReadTime != "3 min read" {
		t.Errorf("ReadTime = %q, want %q", updated.ReadTime, "3 min read")
	}

	got, _ := s.Get(orig.ID)
	if got.Title != "Final" || got.Author != "Grace" {
		t.Errorf("stored post = %+v, want updated fields", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := setupTestStore(t)
	_, err := s.Update(7, Input{Title: "T", Author: "A", Content: "C"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	s, _ := setupTestStore(t)
	p := mustCreate(t, s, "T", "A", "C")
	_, err := s.Update(p.ID, Input{Title: "", Author: "A", Content: "C"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	got, _ := s.Get(p.ID)
	if got.Title != "T" {
		t.Errorf("rejected update modified Title to %q", got.Title)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	p := mustCreate(t, s, "T", "A", "C")

	s.Delete(p.ID)
	if _, err := s.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	rev := s.Revision()

	s.Delete(p.ID)
	if _, err := s.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after second delete, got %v", err)
	}
	if s.Revision() != rev {
		t.Errorf("deleting a missing id should not bump the revision")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	mustCreate(t, s, "one", "A", "first body")
	mustCreate(t, s, "two", "B", "second body")
	mustCreate(t, s, "three", "C", "third body")
	s.Delete(3)

	snap := s.Snapshot()
	if snap.NextID != 4 {
		t.Errorf("NextID = %d, want 4", snap.NextID)
	}

	restored := NewStore()
	restored.Restore(snap)
	if restored.Len() != 2 {
		t.Fatalf("Len = %d, want 2", restored.Len())
	}
	for _, p := range snap.Posts {
		got, err := restored.Get(p.ID)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", p.ID, err)
		}
		if got != p {
			t.Errorf("restored post = %+v, want %+v", got, p)
		}
	}
	p := mustCreate(t, restored, "four", "D", "body")
	if p.ID != 4 {
		t.Errorf("ID after restore = %d, want 4", p.ID)
	}
}

func TestRestoreDerivesNextIDFromPosts(t *testing.T) {
	s := NewStore()
	s.Restore(Snapshot{Posts: []Post{{ID: 9, Title: "T", Author: "A", Content: "C"}}})
	p := mustCreate(t, s, "T", "A", "C")
	if p.ID != 10 {
		t.Errorf("ID = %d, want 10", p.ID)
	}
}

func TestOpen(t *testing.T) {
	target := &memSnapshotter{snap: Snapshot{NextID: 3, Posts: []Post{
		{ID: 1, Title: "a", Author: "x", Content: "c", ReadTime: "1 min read"},
		{ID: 2, Title: "b", Author: "y", Content: "d", ReadTime: "1 min read"},
	}}}
	s, err := Open(context.Background(), target)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestOpenSurfacesLoadError(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := Open(context.Background(), &memSnapshotter{loadErr: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Open error = %v, want it to wrap %v", err, boom)
	}
}
