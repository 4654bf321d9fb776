package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/store"
)

// DefaultEnvironment is shown when no environment label is configured.
const DefaultEnvironment = "development"

// Options configures every session created from it.
type Options struct {
	EnvironmentLabel string
	SeedBugs         []models.Bug
	// Now supplies creation dates. Nil means time.Now.
	Now func() time.Time
}

// Environment returns the configured label or DefaultEnvironment.
func (o Options) Environment() string {
	if o.EnvironmentLabel == "" {
		return DefaultEnvironment
	}
	return o.EnvironmentLabel
}

// FormState is the state of the add-bug form.
type FormState int

const (
	FormClosed FormState = iota
	FormEditing
)

func (f FormState) String() string {
	if f == FormEditing {
		return "editing"
	}
	return "closed"
}

// Dashboard holds one session's bug collection and view state.
type Dashboard struct {
	mu       sync.Mutex
	env      string
	store    store.Store
	filter   models.Filter
	form     FormState
	draft    models.Draft
	errorMsg string
}

// New creates a dashboard with a fresh copy of the configured seed bugs.
func New(opts Options) (*Dashboard, error) {
	s, err := store.NewMemoryStore(opts.SeedBugs, opts.Now)
	if err != nil {
		return nil, fmt.Errorf("seed bug store: %w", err)
	}
	return &Dashboard{
		env:    opts.Environment(),
		store:  s,
		filter: models.FilterAll,
		draft:  models.NewDraft(),
	}, nil
}

// Store returns the dashboard's bug collection.
func (d *Dashboard) Store() store.Store {
	return d.store
}

// SelectFilter changes the visible severity. It never touches the collection.
func (d *Dashboard) SelectFilter(f models.Filter) error {
	f, err := models.ParseFilter(string(f))
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
	return nil
}

// OpenForm moves Closed to Editing with a default draft. Already editing is a no-op.
func (d *Dashboard) OpenForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form == FormEditing {
		return
	}
	d.form = FormEditing
	d.draft = models.NewDraft()
	d.errorMsg = ""
}

// ToggleForm opens a closed form or discards an open one.
func (d *Dashboard) ToggleForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form == FormEditing {
		d.form = FormClosed
	} else {
		d.form = FormEditing
	}
	d.draft = models.NewDraft()
	d.errorMsg = ""
}

// EditDraft replaces the draft while editing. It returns false when the form is closed.
func (d *Dashboard) EditDraft(draft models.Draft) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form != FormEditing {
		return false
	}
	if draft.Severity == "" {
		draft.Severity = models.SeverityMedium
	}
	d.draft = draft
	return true
}

// Cancel discards the draft and closes the form.
func (d *Dashboard) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form = FormClosed
	d.draft = models.NewDraft()
	d.errorMsg = ""
}

// ErrFormClosed is returned by Submit when the form is not open.
var ErrFormClosed = errors.New("add-bug form is not open")

// Submit commits the current draft. On a validation error the form stays
// open with the draft intact; on success the form closes and the draft resets.
func (d *Dashboard) Submit() (models.Bug, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form != FormEditing {
		return models.Bug{}, ErrFormClosed
	}

	bug, err := d.store.AddBug(d.draft)
	if err != nil {
		d.errorMsg = validationMessage(err)
		if errors.Is(err, models.ErrUnknownSeverity) {
			d.draft.Severity = models.SeverityMedium
		}
		return models.Bug{}, err
	}
	d.form = FormClosed
	d.draft = models.NewDraft()
	d.errorMsg = ""
	return bug, nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrEmptyTitle):
		return "Bug title is required."
	case errors.Is(err, models.ErrUnknownSeverity):
		return "Choose a valid severity."
	default:
		return err.Error()
	}
}

// FilterButton describes one filter control.
type FilterButton struct {
	Filter models.Filter
	Text   string
	Active bool
}

// View is an immutable snapshot used for rendering.
type View struct {
	Environment string
	Stats       store.Statistics
	Filter      models.Filter
	Filters     []FilterButton
	Bugs        []models.Bug
	Heading     string
	FormOpen    bool
	Draft       models.Draft
	Error       string
	Severities  []models.Severity
}

// View snapshots the current state.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.store.Statistics()
	bugs := d.store.FilteredBugs(d.filter)

	buttons := make([]FilterButton, 0, len(models.Filters))
	for _, f := range models.Filters {
		buttons = append(buttons, FilterButton{
			Filter: f,
			Text:   filterText(f, stats),
			Active: f == d.filter,
		})
	}

	return View{
		Environment: d.env,
		Stats:       stats,
		Filter:      d.filter,
		Filters:     buttons,
		Bugs:        bugs,
		Heading:     heading(len(bugs), d.filter),
		FormOpen:    d.form == FormEditing,
		Draft:       d.draft,
		Error:       d.errorMsg,
		Severities:  models.Severities,
	}
}

func filterText(f models.Filter, stats store.Statistics) string {
	sev, ok := f.Severity()
	if !ok {
		return f.Label()
	}
	return fmt.Sprintf("%s (%d)", f.Label(), stats.BySeverity(sev))
}

func heading(n int, f models.Filter) string {
	if f == models.FilterAll {
		return fmt.Sprintf("Bug List (%d bugs)", n)
	}
	return fmt.Sprintf("Bug List (%d %s bugs)", n, f)
}
