package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for Bug.Created.
const DateLayout = "2006-01-02"

var (
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrUnknownStatus   = errors.New("unknown status")
	ErrUnknownFilter   = errors.New("unknown filter")
)

// Severity classifies the impact of a bug.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity in display order.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// ParseSeverity converts s to a Severity, ignoring case and surrounding space.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return sev, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// Label returns the capitalised severity ("Critical").
func (s Severity) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Status is the lifecycle state of a bug.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusClosed     Status = "closed"
)

// ParseStatus converts s to a Status. "in_progress" is accepted as an alias.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "in_progress" {
		norm = string(StatusInProgress)
	}
	switch st := Status(norm); st {
	case StatusOpen, StatusInProgress, StatusClosed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Filter selects which bugs are visible in the list.
type Filter string

// FilterAll shows every bug. The remaining filters share their severity's name.
const FilterAll Filter = "all"

// Filters lists every filter in the order the controls are rendered.
var Filters = []Filter{FilterAll, Filter(SeverityCritical), Filter(SeverityHigh), Filter(SeverityMedium), Filter(SeverityLow)}

// ParseFilter converts s to a Filter. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" || norm == string(FilterAll) {
		return FilterAll, nil
	}
	sev, err := ParseSeverity(norm)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return Filter(sev), nil
}

// Severity returns the severity the filter selects, or false for FilterAll.
func (f Filter) Severity() (Severity, bool) {
	if f == FilterAll {
		return "", false
	}
	return Severity(f), true
}

// Label returns the capitalised filter name ("All", "Critical").
func (f Filter) Label() string {
	return Severity(f).Label()
}

// Bug is a tracked issue record.
type Bug struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	Created     time.Time `json:"created"`
	Description string    `json:"description,omitempty"`
}

// CreatedDate returns Created formatted as YYYY-MM-DD.
func (b Bug) CreatedDate() string {
	return b.Created.Format(DateLayout)
}

// Draft is the uncommitted input of the add-bug form.
type Draft struct {
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// NewDraft returns an empty draft with the default severity.
func NewDraft() Draft {
	return Draft{Severity: SeverityMedium}
}

// Date truncates t to midnight of its UTC calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
