package post

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Snapshot is a full copy of the collection as written to durable storage.
// NextID is kept so ids of deleted posts are never handed out again.
type Snapshot struct {
	NextID int64  `json:"nextId"`
	Posts  []Post `json:"posts"`
}

// Snapshotter reads and writes whole snapshots. Load on an empty target
// returns an empty Snapshot and no error.
type Snapshotter interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Store owns the in-memory post collection. Every method is atomic with
// respect to the others.
type Store struct {
	mu     sync.RWMutex
	posts  map[int64]Post
	nextID int64
	rev    uint64
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now as the source of CreatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		posts:  make(map[int64]Post),
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and fills it from target. A load failure is returned
// as is; callers must not fall back to an empty store.
func Open(ctx context.Context, target Snapshotter, opts ...StoreOption) (*Store, error) {
	snap, err := target.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s := NewStore(opts...)
	s.Restore(snap)
	return s, nil
}

// Restore replaces the collection with the contents of snap.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make(map[int64]Post, len(snap.Posts))
	s.nextID = 1
	if snap.NextID > 1 {
		s.nextID = snap.NextID
	}
	for _, p := range snap.Posts {
		s.posts[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
}

// Snapshot returns a consistent copy of the collection, ordered by id.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	posts := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return Snapshot{NextID: s.nextID, Posts: posts}
}

// Revision increases with every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// snapshotAt returns a snapshot together with the revision it reflects.
func (s *Store) snapshotAt() (Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), s.rev
}

// Len returns the number of posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Create validates in and inserts a new post with the next id.
func (s *Store) Create(in Input) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Post{
		ID:        s.nextID,
		Title:     in.Title,
		Author:    in.Author,
		Content:   in.Content,
		ReadTime:  EstimateReadTime(in.Content),
		CreatedAt: s.now(),
	}
	s.nextID++
	s.posts[p.ID] = p
	s.rev++
	return p, nil
}

// Get returns the post with id, or ErrNotFound.
func (s *Store) Get(id int64) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

// List returns all posts, newest first. Posts created at the same instant
// are ordered by id, highest first.
func (s *Store) List() []Post {
	s.mu.RLock()
	posts := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	s.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

// Update replaces title, author and content of the post with id and
// recomputes its read time. ID and CreatedAt never change.
func (s *Store) Update(id int64, in Input) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	if err := in.Validate(); err != nil {
		return Post{}, err
	}
	p.Title = in.Title
	p.Author = in.Author
	p.Content = in.Content
	p.ReadTime = EstimateReadTime(in.Content)
	s.posts[id] = p
	s.rev++
	return p, nil
}

// Delete removes the post with id. Deleting a missing id is a no-op.
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return
	}
	delete(s.posts, id)
	s.rev++
}
