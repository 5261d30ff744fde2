// Package lead holds the process-lifetime mapping from chat to lead record.
package lead

import (
	"strings"
	"sync"
	"time"
)

// Lead is the subject of a sales-fit analysis.
type Lead struct {
	Username   string
	Bio        string // pasted BIO/LINK/POSTS/NOTES block, stored verbatim
	CapturedAt time.Time
}

// Store maps chat ID to the current lead record. Entries live for the
// process lifetime only; there is no expiry and no capacity bound.
// Concurrent writes to the same chat are last-write-wins.
type Store struct {
	mu    sync.RWMutex
	leads map[int64]Lead
}

// NewStore creates an empty lead store.
func NewStore() *Store {
	return &Store{leads: make(map[int64]Lead)}
}

// Put stores or overwrites the lead record for chatID.
func (s *Store) Put(chatID int64, l Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[chatID] = l
}

// Get returns the current lead record for chatID, or false if none exists.
func (s *Store) Get(chatID int64) (Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[chatID]
	return l, ok
}

// AttachBio stores pasted free-form text on the current lead record.
// It is a no-op when no lead has been captured for chatID. The text is
// kept verbatim for a future consumer; nothing parses it today.
func (s *Store) AttachBio(chatID int64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[chatID]
	if !ok {
		return false
	}
	l.Bio = text
	s.leads[chatID] = l
	return true
}

// Len returns the number of live lead records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// NormalizeUsername strips a single leading "@" from a handle.
func NormalizeUsername(handle string) string {
	return strings.TrimPrefix(handle, "@")
}
