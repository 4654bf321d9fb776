package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
}

func TestStatusColor(t *testing.T) {
	assert.Contains(t, StatusColor("open"), "open")
	assert.Contains(t, StatusColor("in-progress"), "in-progress")
	assert.Contains(t, StatusColor("closed"), "closed")
	assert.Equal(t, "unknown", StatusColor("unknown"))
}

func TestSeverityColor(t *testing.T) {
	for _, sev := range []string{"critical", "high", "medium", "low"} {
		assert.Contains(t, SeverityColor(sev), sev)
	}
	assert.Equal(t, "urgent", SeverityColor("urgent"))
}

func TestCountColor(t *testing.T) {
	assert.Contains(t, CountColor(0), "0")
	assert.Contains(t, CountColor(3), "3")
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Title", "Status"})
	require.NotNil(t, table)

	require.NoError(t, table.Append([]string{"login", "open"}))
	require.NoError(t, table.Append([]string{"email", "closed"}))
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "login") || strings.Contains(result, "LOGIN"),
		"table output should contain bug titles")
	assert.True(t, strings.Contains(result, "email") || strings.Contains(result, "EMAIL"),
		"table output should contain bug titles")
}
