package store

import (
	"errors"

	"github.com/joescharf/bugboard/internal/models"
)

// ErrEmptyTitle is returned by AddBug when the draft title is blank.
var ErrEmptyTitle = errors.New("bug title is required")

// Statistics aggregates counts over the full bug collection.
type Statistics struct {
	Total      int `json:"total"`
	Critical   int `json:"critical"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// BySeverity returns the count for a single severity.
func (s Statistics) BySeverity(sev models.Severity) int {
	switch sev {
	case models.SeverityCritical:
		return s.Critical
	case models.SeverityHigh:
		return s.High
	case models.SeverityMedium:
		return s.Medium
	case models.SeverityLow:
		return s.Low
	default:
		return 0
	}
}

// Store defines the bug collection used by a dashboard session.
type Store interface {
	// List returns every bug in insertion order.
	List() []models.Bug
	FilteredBugs(filter models.Filter) []models.Bug
	Statistics() Statistics
	// AddBug validates and appends a new bug built from draft.
	AddBug(draft models.Draft) (models.Bug, error)
}
