package chooser

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/remote"
)

func testStore() *profile.Store {
	return profile.NewStore(
		profile.Profile{GitUserName: "Jane Doe", GitUserEmail: "jane@corp.example"},
		profile.Profile{GitUserName: "jane", GitUserEmail: "jane@home.example"},
	)
}

func testModel(t *testing.T, preselect string) *Model {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	cls := remote.Classification{Binding: remote.BareUpstream}
	return New(testStore(), cls, preselect, logger)
}

func pressKey(m *Model, key string) *Model {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(*Model)
}

func TestPreselect(t *testing.T) {
	assert.Equal(t, 0, testModel(t, profile.Work).index)
	assert.Equal(t, 1, testModel(t, profile.Personal).index)
	assert.Equal(t, 0, testModel(t, "unknown").index)
}

func TestChooseWithEnter(t *testing.T) {
	m := testModel(t, profile.Work)
	m = pressKey(m, "enter")

	assert.Equal(t, profile.Work, m.Choice)
	assert.False(t, m.Cancelled)
}

func TestNavigateAndChoose(t *testing.T) {
	m := testModel(t, profile.Work)
	m = pressKey(m, "j")
	m = pressKey(m, "enter")
	assert.Equal(t, profile.Personal, m.Choice)

	// Navigation clamps at both ends.
	m = testModel(t, profile.Personal)
	m = pressKey(m, "j")
	m = pressKey(m, "enter")
	assert.Equal(t, profile.Personal, m.Choice)

	m = testModel(t, profile.Work)
	m = pressKey(m, "k")
	m = pressKey(m, "enter")
	assert.Equal(t, profile.Work, m.Choice)
}

func TestCancel(t *testing.T) {
	for _, key := range []string{"esc", "q", "ctrl+c"} {
		m := testModel(t, profile.Work)
		m = pressKey(m, key)
		assert.True(t, m.Cancelled, "key %q should cancel", key)
		assert.Empty(t, m.Choice)
	}
}

func TestViewShowsBinding(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	m := New(testStore(), remote.Classification{Binding: remote.Bound, Profile: profile.Work}, profile.Work, logger)
	view := m.View()
	assert.Contains(t, view, "bound to the work profile")

	m = New(testStore(), remote.Classification{Binding: remote.BareUpstream}, profile.Work, logger)
	require.True(t, strings.Contains(m.View(), "not bound yet"))

	assert.Contains(t, m.View(), "Jane Doe")
	assert.Contains(t, m.View(), "jane@home.example")
}
