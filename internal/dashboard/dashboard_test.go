package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/seed"
	"github.com/joescharf/bugboard/internal/store"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	d, err := New(Options{
		EnvironmentLabel: "test",
		SeedBugs:         seed.Default(),
		Now:              func() time.Time { return time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return d
}

func visibleIDs(v View) []int {
	out := make([]int, len(v.Bugs))
	for i, b := range v.Bugs {
		out[i] = b.ID
	}
	return out
}

func TestNew_InitialView(t *testing.T) {
	d := newTestDashboard(t)
	v := d.View()

	assert.Equal(t, "test", v.Environment)
	assert.Equal(t, models.FilterAll, v.Filter)
	assert.Equal(t, []int{1, 2, 3, 4}, visibleIDs(v))
	assert.Equal(t, 4, v.Stats.Total)
	assert.Equal(t, 1, v.Stats.Critical)
	assert.Equal(t, 3, v.Stats.Open)
	assert.Equal(t, 1, v.Stats.InProgress)
	assert.False(t, v.FormOpen)
	assert.Equal(t, "Bug List (4 bugs)", v.Heading)
	assert.Equal(t, models.Severities, v.Severities)
}

func TestOptions_EnvironmentFallback(t *testing.T) {
	assert.Equal(t, "development", Options{}.Environment())
	assert.Equal(t, "prod", Options{EnvironmentLabel: "prod"}.Environment())

	d, err := New(Options{SeedBugs: seed.Default()})
	require.NoError(t, err)
	assert.Equal(t, DefaultEnvironment, d.View().Environment)
}

func TestNew_SessionsDoNotShareBugs(t *testing.T) {
	opts := Options{SeedBugs: seed.Default()}
	a, err := New(opts)
	require.NoError(t, err)
	b, err := New(opts)
	require.NoError(t, err)

	a.OpenForm()
	a.EditDraft(models.Draft{Title: "only in a"})
	_, err = a.Submit()
	require.NoError(t, err)

	assert.Equal(t, 5, a.View().Stats.Total)
	assert.Equal(t, 4, b.View().Stats.Total)
	assert.Len(t, opts.SeedBugs, 4)
}

func TestFilterButtons(t *testing.T) {
	d := newTestDashboard(t)
	v := d.View()

	var texts []string
	for _, b := range v.Filters {
		texts = append(texts, b.Text)
	}
	assert.Equal(t, []string{"All", "Critical (1)", "High (1)", "Medium (1)", "Low (1)"}, texts)
	assert.True(t, v.Filters[0].Active)
	for _, b := range v.Filters[1:] {
		assert.False(t, b.Active)
	}
}

func TestSelectFilter(t *testing.T) {
	tests := []struct {
		filter  models.Filter
		want    []int
		heading string
	}{
		{"critical", []int{3}, "Bug List (1 critical bugs)"},
		{"high", []int{1}, "Bug List (1 high bugs)"},
		{"medium", []int{2}, "Bug List (1 medium bugs)"},
		{"low", []int{4}, "Bug List (1 low bugs)"},
		{"all", []int{1, 2, 3, 4}, "Bug List (4 bugs)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			d := newTestDashboard(t)
			require.NoError(t, d.SelectFilter(tt.filter))
			v := d.View()
			assert.Equal(t, tt.want, visibleIDs(v))
			assert.Equal(t, tt.heading, v.Heading)
			assert.Equal(t, 4, v.Stats.Total, "filtering never changes statistics")
		})
	}
}

func TestSelectFilter_Unknown(t *testing.T) {
	d := newTestDashboard(t)
	require.NoError(t, d.SelectFilter("high"))

	err := d.SelectFilter("urgent")
	require.ErrorIs(t, err, models.ErrUnknownFilter)
	assert.Equal(t, models.Filter("high"), d.View().Filter, "filter unchanged")
}

func TestSelectFilter_Idempotent(t *testing.T) {
	for _, a := range models.Filters {
		for _, b := range models.Filters {
			direct := newTestDashboard(t)
			require.NoError(t, direct.SelectFilter(a))

			switched := newTestDashboard(t)
			require.NoError(t, switched.SelectFilter(a))
			require.NoError(t, switched.SelectFilter(b))
			require.NoError(t, switched.SelectFilter(a))

			assert.Equal(t, visibleIDs(direct.View()), visibleIDs(switched.View()), "%s -> %s -> %s", a, b, a)
		}
	}
}

func TestFormStateMachine_OpenCancel(t *testing.T) {
	d := newTestDashboard(t)

	d.OpenForm()
	v := d.View()
	assert.True(t, v.FormOpen)
	assert.Equal(t, models.NewDraft(), v.Draft)

	require.True(t, d.EditDraft(models.Draft{Title: "half typed", Severity: models.SeverityLow}))
	assert.Equal(t, "half typed", d.View().Draft.Title)

	d.Cancel()
	v = d.View()
	assert.False(t, v.FormOpen)
	assert.Equal(t, models.NewDraft(), v.Draft)
	assert.Equal(t, 4, v.Stats.Total)

	d.OpenForm()
	assert.Empty(t, d.View().Draft.Title, "cancelled draft is not restored")
}

func TestFormStateMachine_Toggle(t *testing.T) {
	d := newTestDashboard(t)

	d.ToggleForm()
	assert.True(t, d.View().FormOpen)
	d.EditDraft(models.Draft{Title: "temp"})

	d.ToggleForm()
	v := d.View()
	assert.False(t, v.FormOpen)
	assert.Empty(t, v.Draft.Title)
}

func TestOpenForm_WhileEditingKeepsDraft(t *testing.T) {
	d := newTestDashboard(t)
	d.OpenForm()
	d.EditDraft(models.Draft{Title: "keep me"})

	d.OpenForm()
	assert.Equal(t, "keep me", d.View().Draft.Title)
}

func TestEditDraft_ClosedForm(t *testing.T) {
	d := newTestDashboard(t)
	assert.False(t, d.EditDraft(models.Draft{Title: "ignored"}))
	assert.Empty(t, d.View().Draft.Title)
}

func TestEditDraft_DefaultsSeverity(t *testing.T) {
	d := newTestDashboard(t)
	d.OpenForm()
	d.EditDraft(models.Draft{Title: "x"})
	assert.Equal(t, models.SeverityMedium, d.View().Draft.Severity)
}

func TestSubmit_Valid(t *testing.T) {
	d := newTestDashboard(t)
	d.OpenForm()
	d.EditDraft(models.Draft{Title: "New test bug", Severity: models.SeverityHigh, Description: "Test description"})

	bug, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, 5, bug.ID)
	assert.Equal(t, models.StatusOpen, bug.Status)
	assert.Equal(t, "2026-10-17", bug.CreatedDate())

	v := d.View()
	assert.False(t, v.FormOpen)
	assert.Equal(t, models.NewDraft(), v.Draft)
	assert.Empty(t, v.Error)
	assert.Equal(t, 5, v.Stats.Total)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, visibleIDs(v))
	assert.Equal(t, "High (2)", v.Filters[2].Text)
}

func TestSubmit_EmptyTitleKeepsDraft(t *testing.T) {
	d := newTestDashboard(t)
	d.OpenForm()
	draft := models.Draft{Title: "   ", Severity: models.SeverityHigh, Description: "kept"}
	d.EditDraft(draft)

	_, err := d.Submit()
	require.ErrorIs(t, err, store.ErrEmptyTitle)

	v := d.View()
	assert.True(t, v.FormOpen)
	assert.Equal(t, draft, v.Draft)
	assert.Equal(t, "Bug title is required.", v.Error)
	assert.Equal(t, 4, v.Stats.Total)

	// Correcting the draft clears the error and uses the next unused id.
	d.EditDraft(models.Draft{Title: "fixed", Severity: models.SeverityHigh})
	bug, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, 5, bug.ID)
	assert.Empty(t, d.View().Error)
}

func TestSubmit_UnknownSeverityResetsToMedium(t *testing.T) {
	d := newTestDashboard(t)
	d.OpenForm()
	d.EditDraft(models.Draft{Title: "keep title", Severity: "urgent", Description: "kept"})

	_, err := d.Submit()
	require.ErrorIs(t, err, models.ErrUnknownSeverity)

	v := d.View()
	assert.True(t, v.FormOpen)
	assert.Equal(t, "Choose a valid severity.", v.Error)
	assert.Equal(t, models.Draft{Title: "keep title", Severity: models.SeverityMedium, Description: "kept"}, v.Draft)
	assert.Equal(t, 4, v.Stats.Total)
}

func TestToggleForm_Concurrent(t *testing.T) {
	d := newTestDashboard(t)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.ToggleForm()
		}()
	}
	wg.Wait()

	// An even number of toggles always returns to the starting state.
	assert.False(t, d.View().FormOpen)
}

func TestSubmit_FormClosed(t *testing.T) {
	d := newTestDashboard(t)
	_, err := d.Submit()
	require.ErrorIs(t, err, ErrFormClosed)
	assert.Equal(t, 4, d.View().Stats.Total)
}

func TestSubmit_WhileFiltered(t *testing.T) {
	d := newTestDashboard(t)
	require.NoError(t, d.SelectFilter("critical"))
	d.OpenForm()
	d.EditDraft(models.Draft{Title: "second critical", Severity: models.SeverityCritical})
	_, err := d.Submit()
	require.NoError(t, err)

	v := d.View()
	assert.Equal(t, models.Filter("critical"), v.Filter)
	assert.Equal(t, []int{3, 5}, visibleIDs(v))
	assert.Equal(t, "Critical (2)", v.Filters[1].Text)
}

func TestFormState_String(t *testing.T) {
	assert.Equal(t, "closed", FormClosed.String())
	assert.Equal(t, "editing", FormEditing.String())
}
