package ui

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/seed"
)

var bugRow = regexp.MustCompile(`data-testid="bug-\d+"`)

func render(t *testing.T, d *dashboard.Dashboard) string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Dashboard(&buf, d.View()))
	return buf.String()
}

func newTestDashboard(t *testing.T, bugs []models.Bug) *dashboard.Dashboard {
	t.Helper()
	d, err := dashboard.New(dashboard.Options{
		EnvironmentLabel: "test",
		SeedBugs:         bugs,
		Now:              func() time.Time { return time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return d
}

func TestDashboard_InitialRender(t *testing.T) {
	html := render(t, newTestDashboard(t, seed.Default()))

	assert.Contains(t, html, "Bug Tracker Dashboard")
	assert.Contains(t, html, "Environment: test")
	assert.Contains(t, html, `data-testid="total-bugs">4<`)
	assert.Contains(t, html, `data-testid="critical-bugs">1<`)
	assert.Contains(t, html, `data-testid="open-bugs">3<`)
	assert.Contains(t, html, `data-testid="in-progress-bugs">1<`)
	assert.Contains(t, html, `data-testid="bug-list"`)
	assert.Len(t, bugRow.FindAllString(html, -1), 4)

	assert.Contains(t, html, `data-testid="filter-all">All<`)
	assert.Contains(t, html, `data-testid="filter-critical">Critical (1)<`)
	assert.Contains(t, html, `data-testid="filter-high">High (1)<`)
	assert.Contains(t, html, `data-testid="filter-medium">Medium (1)<`)
	assert.Contains(t, html, `data-testid="filter-low">Low (1)<`)
	assert.Contains(t, html, `data-testid="add-bug-button"`)

	assert.Contains(t, html, "Status: in-progress")
	assert.Contains(t, html, "Created: 2024-08-19")
	assert.Contains(t, html, "ID: 3")
	assert.Contains(t, html, "Bug List (4 bugs)")

	assert.NotContains(t, html, `data-testid="bug-title-input"`, "form is closed by default")
}

func TestDashboard_FormOpen(t *testing.T) {
	d := newTestDashboard(t, seed.Default())
	d.OpenForm()
	html := render(t, d)

	for _, id := range []string{"bug-title-input", "bug-severity-select", "bug-description-input", "submit-bug-button", "cancel-bug-button"} {
		assert.Contains(t, html, `data-testid="`+id+`"`)
	}
	assert.Regexp(t, `(?s)value="critical">Critical.*value="high">High.*value="medium" selected>Medium.*value="low">Low`, html)
}

func TestDashboard_ValidationErrorAndDraft(t *testing.T) {
	d := newTestDashboard(t, seed.Default())
	d.OpenForm()
	d.EditDraft(models.Draft{Title: " ", Severity: models.SeverityHigh, Description: "<b>kept</b>"})
	_, err := d.Submit()
	require.Error(t, err)

	html := render(t, d)
	assert.Contains(t, html, "Bug title is required.")
	assert.Contains(t, html, `value="high" selected`)
	assert.Contains(t, html, "&lt;b&gt;kept&lt;/b&gt;", "draft is escaped")
}

func TestDashboard_EmptyList(t *testing.T) {
	html := render(t, newTestDashboard(t, nil))
	assert.Contains(t, html, "No bugs match the current filter.")
	assert.Empty(t, bugRow.FindAllString(html, -1))
}

func TestDashboard_ActiveFilter(t *testing.T) {
	d := newTestDashboard(t, seed.Default())
	require.NoError(t, d.SelectFilter("critical"))
	html := render(t, d)

	assert.Contains(t, html, `class="filter active" data-testid="filter-critical"`)
	assert.Equal(t, []string{`data-testid="bug-3"`}, bugRow.FindAllString(html, -1))
	assert.Contains(t, html, "Bug List (1 critical bugs)")
}

func TestStaticHandler(t *testing.T) {
	h, err := StaticHandler()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".severity-critical")
}

func TestClasses(t *testing.T) {
	assert.Equal(t, "severity-critical", SeverityClass(models.SeverityCritical))
	assert.Equal(t, "severity-unknown", SeverityClass("urgent"))
	assert.Equal(t, "status-in-progress", StatusClass(models.StatusInProgress))
	assert.Equal(t, "status-unknown", StatusClass("done"))
}
