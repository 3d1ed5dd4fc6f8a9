// Package chooser is the interactive profile picker shown when a command is
// asked to bind a repository and the operator wants to decide per repository
// instead of trusting the location-based resolution.
package chooser

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/reconcile"
	"gitid/internal/remote"
	"gitid/internal/tui/components"
	"gitid/internal/tui/styles"
)

// ErrCancelled is returned when the operator backs out without choosing.
var ErrCancelled = errors.New("profile choice cancelled")

// Model is the Bubble Tea model for the picker. It lists both profiles and
// shows what the remote URL currently binds to.
type Model struct {
	store *profile.Store
	cls   remote.Classification
	index int

	Choice    string
	Cancelled bool

	layout components.LayoutModel
	logger *logging.AppLogger
}

// New builds a picker preselecting the named profile. An unknown preselect
// name falls back to the first profile.
func New(store *profile.Store, cls remote.Classification, preselect string, logger *logging.AppLogger) *Model {
	index := 0
	for i, p := range store.Profiles() {
		if p.Name == preselect {
			index = i
			break
		}
	}
	return &Model{
		store:  store,
		cls:    cls,
		index:  index,
		layout: components.NewLayout(components.LayoutConfig{}),
		logger: logger,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.layout, _ = m.layout.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.index > 0 {
				m.index--
			}
		case "down", "j":
			if m.index < len(m.store.Profiles())-1 {
				m.index++
			}
		case "enter", " ":
			m.Choice = m.store.Profiles()[m.index].Name
			m.logger.Info("Profile chosen", "profile", m.Choice)
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.Cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) View() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Choose a profile",
		Subtitle: m.currentBinding(),
		HelpText: "Use ↑/↓ to select • Enter to confirm • Esc to cancel",
	})

	var content string
	for i, p := range m.store.Profiles() {
		line := fmt.Sprintf("  %s  %s <%s>", p.DisplayName, p.GitUserName, p.GitUserEmail)
		if i == m.index {
			line = styles.SelectedStyle.Render("▶" + line[1:])
		}
		content += line + "\n"
	}

	return m.layout.Render(content)
}

func (m *Model) currentBinding() string {
	switch m.cls.Binding {
	case remote.Bound:
		return fmt.Sprintf("The remote is currently bound to the %s profile.", m.cls.Profile)
	case remote.BareUpstream:
		return "The remote points at the upstream host and is not bound yet."
	default:
		return "The remote is not recognized."
	}
}

// Interactive returns a profile chooser that runs this picker in a full
// screen program. The preselect name is what location-based resolution
// suggested; it is the default answer.
func Interactive(store *profile.Store, preselect string, logger *logging.AppLogger) reconcile.ChooseProfile {
	return func(cls remote.Classification) (string, error) {
		model := New(store, cls, preselect, logger)
		program := tea.NewProgram(model, tea.WithAltScreen())

		final, err := program.Run()
		if err != nil {
			return "", fmt.Errorf("profile chooser failed: %w", err)
		}

		result := final.(*Model)
		if result.Cancelled {
			return "", ErrCancelled
		}
		return result.Choice, nil
	}
}
