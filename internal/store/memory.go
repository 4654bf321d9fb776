package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joescharf/bugboard/internal/models"
)

// MemoryStore implements Store over an ordered in-memory slice.
type MemoryStore struct {
	mu   sync.RWMutex
	bugs []models.Bug
	now  func() time.Time
}

// NewMemoryStore creates a store holding a copy of seed.
// now supplies the creation date for added bugs; nil means time.Now.
func NewMemoryStore(seed []models.Bug, now func() time.Time) (*MemoryStore, error) {
	if now == nil {
		now = time.Now
	}
	seen := make(map[int]bool, len(seed))
	bugs := make([]models.Bug, 0, len(seed))
	for _, b := range seed {
		if b.ID <= 0 {
			return nil, fmt.Errorf("seed bug %q: id must be positive", b.Title)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("seed bug %q: duplicate id %d", b.Title, b.ID)
		}
		seen[b.ID] = true
		sev, err := models.ParseSeverity(string(b.Severity))
		if err != nil {
			return nil, fmt.Errorf("seed bug %d: %w", b.ID, err)
		}
		st, err := models.ParseStatus(string(b.Status))
		if err != nil {
			return nil, fmt.Errorf("seed bug %d: %w", b.ID, err)
		}
		// Stored values are always canonical so filters and counts see them.
		b.Severity, b.Status = sev, st
		bugs = append(bugs, b)
	}
	return &MemoryStore{bugs: bugs, now: now}, nil
}

func (s *MemoryStore) List() []models.Bug {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Bug, len(s.bugs))
	copy(out, s.bugs)
	return out
}

// FilteredBugs returns the bugs visible under filter in insertion order.
func (s *MemoryStore) FilteredBugs(filter models.Filter) []models.Bug {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Bug, 0, len(s.bugs))
	for _, b := range s.bugs {
		if matches(filter, b) {
			out = append(out, b)
		}
	}
	return out
}

// matches has one branch per filter value. Unknown filters match nothing.
func matches(filter models.Filter, b models.Bug) bool {
	switch filter {
	case models.FilterAll:
		return true
	case models.Filter(models.SeverityCritical):
		return b.Severity == models.SeverityCritical
	case models.Filter(models.SeverityHigh):
		return b.Severity == models.SeverityHigh
	case models.Filter(models.SeverityMedium):
		return b.Severity == models.SeverityMedium
	case models.Filter(models.SeverityLow):
		return b.Severity == models.SeverityLow
	default:
		return false
	}
}

func (s *MemoryStore) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Statistics{Total: len(s.bugs)}
	for _, b := range s.bugs {
		switch b.Severity {
		case models.SeverityCritical:
			st.Critical++
		case models.SeverityHigh:
			st.High++
		case models.SeverityMedium:
			st.Medium++
		case models.SeverityLow:
			st.Low++
		}
		switch b.Status {
		case models.StatusOpen:
			st.Open++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusClosed:
			st.Closed++
		}
	}
	return st
}

// AddBug appends a bug built from draft. A blank title returns ErrEmptyTitle
// and leaves the collection and id sequence untouched.
func (s *MemoryStore) AddBug(draft models.Draft) (models.Bug, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Bug{}, ErrEmptyTitle
	}
	sev := draft.Severity
	if sev == "" {
		sev = models.SeverityMedium
	}
	sev, err := models.ParseSeverity(string(sev))
	if err != nil {
		return models.Bug{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bug := models.Bug{
		ID:          s.nextID(),
		Title:       title,
		Severity:    sev,
		Status:      models.StatusOpen,
		Created:     models.Date(s.now()),
		Description: strings.TrimSpace(draft.Description),
	}
	s.bugs = append(s.bugs, bug)
	return bug, nil
}

func (s *MemoryStore) nextID() int {
	max := 0
	for _, b := range s.bugs {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}
