package controllers

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Post is a blog entry.
type Post struct {
	CreatedAt time.Time `json:"created_at" xml:"created_at"`
	Title     string    `json:"title" xml:"title"`
	Body      string    `json:"body" xml:"body"`
	ID        int       `json:"id" xml:"id,attr"`
}

// Store keeps posts in memory. Safe for concurrent use.
type Store struct {
	posts  []Post
	nextID int
	mu     sync.RWMutex
}

// NewStore creates a store seeded with posts.
func NewStore(seed ...Post) *Store {
	s := &Store{nextID: 1}
	for _, p := range seed {
		s.Add(p.Title, p.Body)
	}
	return s
}

// Add stores a new post and returns it.
func (s *Store) Add(title, body string) Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Post{
		ID:        s.nextID,
		Title:     strings.TrimSpace(title),
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.posts = append(s.posts, p)
	return p
}

// List returns all posts, newest first.
func (s *Store) List() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.posts)
	slices.Reverse(out)
	return out
}

// Get returns the post with the given id.
func (s *Store) Get(id int) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}
