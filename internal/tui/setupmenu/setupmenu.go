// Package setupmenu provides the first-time setup flow.
//
// The wizard walks through the work identity (name, email, work folder) and
// the personal identity (name, email), then writes the configuration record.
// Each input is validated on submit with the error shown inline; Escape goes
// back one step.
package setupmenu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/tui/components"
	"gitid/internal/tui/styles"
)

// SetupState represents the current step of the setup wizard.
type SetupState int

const (
	SetupStateWelcome       SetupState = iota
	SetupStateWorkName                 // Work git author name
	SetupStateWorkEmail                // Work git author email
	SetupStateWorkFolder               // Root folder that binds repositories to work
	SetupStatePersonalName             // Personal git author name
	SetupStatePersonalEmail            // Personal git author email
	SetupStateConfirmation             // Review and confirm
	SetupStateComplete
	SetupStateCancelled
)

// Custom messages for internal state transitions
type (
	setupErrorMsg    struct{ err error }
	setupCompleteMsg struct{}
)

// SetupModel manages the setup wizard state and user interactions. Pointer
// receivers keep state changes visible across the event loop.
type SetupModel struct {
	state SetupState

	// Collected answers
	WorkName      string
	WorkEmail     string
	WorkFolder    string
	PersonalName  string
	PersonalEmail string

	Cancelled bool
	logger    *logging.AppLogger

	// save persists the assembled store; swapped in tests.
	save func(*profile.Store) error

	textInput textinput.Model
	layout    components.LayoutModel
}

// NewSetupModel creates the wizard. An existing store prefills the answers
// so re-running setup edits instead of starting blank.
func NewSetupModel(existing *profile.Store, logger *logging.AppLogger) *SetupModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256

	layout := components.NewLayout(components.LayoutConfig{
		MarginX:  2,
		MarginY:  1,
		MaxWidth: 100,
	})

	m := &SetupModel{
		state:     SetupStateWelcome,
		textInput: ti,
		layout:    layout,
		logger:    logger,
		save:      func(s *profile.Store) error { return s.Save() },
	}

	if existing != nil {
		work, _ := existing.Get(profile.Work)
		personal, _ := existing.Get(profile.Personal)
		m.WorkName = work.GitUserName
		m.WorkEmail = work.GitUserEmail
		m.WorkFolder = existing.RootFolder
		m.PersonalName = personal.GitUserName
		m.PersonalEmail = personal.GitUserEmail
	}

	return m
}

func (m *SetupModel) Init() tea.Cmd {
	m.logger.Info("Setup wizard started")
	return textinput.Blink
}

// State returns the wizard's current step, mostly for callers deciding what
// to do after the program ends.
func (m *SetupModel) State() SetupState {
	return m.state
}

func (m *SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.layout, _ = m.layout.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.textInput.Width = m.layout.InputWidth()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case setupErrorMsg:
		m.layout = m.layout.SetError(msg.err)
		return m, nil

	case setupCompleteMsg:
		m.state = SetupStateComplete
		m.layout = m.layout.ClearError()
		return m, nil
	}

	return m, nil
}

func (m *SetupModel) handleKeyPress(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}

	switch m.state {
	case SetupStateWelcome:
		return m.handleWelcomeKeys(msg)
	case SetupStateWorkName:
		return m.handleNameKeys(msg, &m.WorkName, SetupStateWorkEmail, SetupStateWelcome)
	case SetupStateWorkEmail:
		return m.handleEmailKeys(msg, &m.WorkEmail, SetupStateWorkFolder, SetupStateWorkName)
	case SetupStateWorkFolder:
		return m.handleWorkFolderKeys(msg)
	case SetupStatePersonalName:
		return m.handleNameKeys(msg, &m.PersonalName, SetupStatePersonalEmail, SetupStateWorkFolder)
	case SetupStatePersonalEmail:
		return m.handleEmailKeys(msg, &m.PersonalEmail, SetupStateConfirmation, SetupStatePersonalName)
	case SetupStateConfirmation:
		return m.handleConfirmationKeys(msg)
	default:
		return m, tea.Quit
	}
}

func (m *SetupModel) handleWelcomeKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		return m, m.enterInput(SetupStateWorkName)
	case "esc", "q":
		return m.handleQuit()
	}
	return m, nil
}

// handleNameKeys is shared by both author-name steps. Enter requires a
// non-empty value; Escape goes back without validating.
func (m *SetupModel) handleNameKeys(msg tea.KeyMsg, field *string, next, prev SetupState) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, func() tea.Msg { return setupErrorMsg{fmt.Errorf("name cannot be empty")} }
		}
		*field = input
		return m, m.enterInput(next)
	case "esc":
		return m, m.enterInput(prev)
	default:
		return m.updateTextInput(msg)
	}
}

// handleEmailKeys is shared by both email steps. A failing address keeps the
// step active with the error shown, so the operator corrects and resubmits.
func (m *SetupModel) handleEmailKeys(msg tea.KeyMsg, field *string, next, prev SetupState) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())
		if err := profile.ValidateEmail(input); err != nil {
			m.logger.Warn("Email validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}
		*field = input
		return m, m.enterInput(next)
	case "esc":
		return m, m.enterInput(prev)
	default:
		return m.updateTextInput(msg)
	}
}

// handleWorkFolderKeys validates the folder through the same rule the store
// applies on load: it must exist at the time it is set. Empty is allowed and
// means every repository resolves to personal.
func (m *SetupModel) handleWorkFolderKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())
		scratch := profile.DefaultStore()
		if err := scratch.SetRootFolder(input); err != nil {
			m.logger.Warn("Work folder validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}
		m.WorkFolder = scratch.RootFolder
		return m, m.enterInput(SetupStatePersonalName)
	case "esc":
		return m, m.enterInput(SetupStateWorkEmail)
	default:
		return m.updateTextInput(msg)
	}
}

func (m *SetupModel) handleConfirmationKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		return m, m.createConfig()
	case "n", "N", "esc":
		return m, m.enterInput(SetupStatePersonalEmail)
	case "q":
		return m.handleQuit()
	}
	return m, nil
}

func (m *SetupModel) updateTextInput(msg tea.Msg) (*SetupModel, tea.Cmd) {
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	// Clear error on input change
	if m.layout.GetError() != nil {
		m.layout = m.layout.ClearError()
	}
	return m, cmd
}

// enterInput transitions to an input step, seeding the text input with the
// already-collected answer so going back shows what was entered.
func (m *SetupModel) enterInput(state SetupState) tea.Cmd {
	m.state = state
	m.textInput.Reset()
	m.textInput.SetValue(m.currentValue(state))
	m.textInput.Placeholder = m.placeholder(state)
	m.textInput.Focus()
	m.layout = m.layout.ClearError()
	return textinput.Blink
}

func (m *SetupModel) currentValue(state SetupState) string {
	switch state {
	case SetupStateWorkName:
		return m.WorkName
	case SetupStateWorkEmail:
		return m.WorkEmail
	case SetupStateWorkFolder:
		return m.WorkFolder
	case SetupStatePersonalName:
		return m.PersonalName
	case SetupStatePersonalEmail:
		return m.PersonalEmail
	}
	return ""
}

func (m *SetupModel) placeholder(state SetupState) string {
	switch state {
	case SetupStateWorkName:
		return "Jane Doe"
	case SetupStateWorkEmail:
		return "jane.doe@company.com"
	case SetupStateWorkFolder:
		return "~/work (leave empty to always use personal)"
	case SetupStatePersonalName:
		return "jane"
	case SetupStatePersonalEmail:
		return "jane@example.com"
	}
	return ""
}

// Store assembles the answers into a profile store. Valid only after the
// inputs passed their step validation.
func (m *SetupModel) Store() (*profile.Store, error) {
	store := profile.NewStore(
		profile.Profile{GitUserName: m.WorkName, GitUserEmail: m.WorkEmail},
		profile.Profile{GitUserName: m.PersonalName, GitUserEmail: m.PersonalEmail},
	)
	if err := store.SetRootFolder(m.WorkFolder); err != nil {
		return nil, err
	}
	return store, nil
}

// createConfig persists the configuration off the event loop.
func (m *SetupModel) createConfig() tea.Cmd {
	return func() tea.Msg {
		m.logger.Info("Saving configuration", "work_folder", m.WorkFolder)
		store, err := m.Store()
		if err == nil {
			err = m.save(store)
		}
		if err != nil {
			m.logger.Error("Configuration save failed", "error", err)
			return setupErrorMsg{err}
		}
		m.logger.Info("Configuration saved")
		return setupCompleteMsg{}
	}
}

func (m *SetupModel) handleQuit() (*SetupModel, tea.Cmd) {
	m.logger.Warn("Setup cancelled by user")
	m.Cancelled = true
	m.state = SetupStateCancelled
	return m, tea.Quit
}

func (m *SetupModel) View() string {
	switch m.state {
	case SetupStateWelcome:
		return m.viewWelcome()
	case SetupStateWorkName:
		return m.viewInput("Work identity", "What name should work commits carry?", "Git author name:")
	case SetupStateWorkEmail:
		return m.viewInput("Work identity", "What email should work commits carry?", "Git author email:")
	case SetupStateWorkFolder:
		return m.viewWorkFolder()
	case SetupStatePersonalName:
		return m.viewInput("Personal identity", "What name should personal commits carry?", "Git author name:")
	case SetupStatePersonalEmail:
		return m.viewInput("Personal identity", "What email should personal commits carry?", "Git author email:")
	case SetupStateConfirmation:
		return m.viewConfirmation()
	case SetupStateComplete:
		return m.viewComplete()
	case SetupStateCancelled:
		return m.viewCancelled()
	}
	return ""
}

func (m *SetupModel) viewWelcome() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Welcome to gitid!",
		Subtitle: "Let's set up your two git identities.",
		HelpText: "Press Enter to continue, or Esc to cancel",
	})

	content := `gitid keeps a work identity and a personal identity and applies the right one per repository.

We'll need:
• The work identity (name, email) and the folder your work repositories live under
• The personal identity (name, email), used everywhere else

SSH keys and host aliases get sensible defaults; generate keys afterwards with 'gitid keygen'.`

	return m.layout.Render(content)
}

func (m *SetupModel) viewInput(title, subtitle, prompt string) string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    title,
		Subtitle: subtitle,
		HelpText: "Press Enter to continue • Esc to go back",
	})

	input := styles.InputStyle.Render(m.textInput.View())
	return m.layout.Render(fmt.Sprintf("%s\n%s", prompt, input))
}

func (m *SetupModel) viewWorkFolder() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Work folder",
		Subtitle: "Repositories under this folder resolve to the work profile.",
		HelpText: "Press Enter to continue • Esc to go back • Use ~ for home directory",
	})

	explanation := `Everything outside this folder resolves to the personal profile. The folder must already exist; leave it empty to always use personal.`

	input := styles.InputStyle.Render(m.textInput.View())
	return m.layout.Render(fmt.Sprintf("%s\n\nWork folder path:\n%s", explanation, input))
}

func (m *SetupModel) viewConfirmation() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Confirm configuration",
		Subtitle: "Please review your settings:",
		HelpText: "Press y to confirm • n to go back • q to cancel",
	})

	folder := m.WorkFolder
	if folder == "" {
		folder = "(not set, personal applies everywhere)"
	}

	settings := fmt.Sprintf(`Work:     %s <%s>
Folder:   %s
Personal: %s <%s>

Config file: %s`,
		m.WorkName, m.WorkEmail, folder, m.PersonalName, m.PersonalEmail, profile.ConfigPath())

	return m.layout.Render(settings + "\n\nIs this correct? (Y/n)")
}

func (m *SetupModel) viewComplete() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Setup complete!",
		Subtitle: "gitid has been configured successfully.",
		HelpText: "Press any key to continue",
	})

	content := fmt.Sprintf(`Configuration saved to %s.

Next steps:
• 'gitid keygen' to generate the SSH keys
• 'gitid ssh-config --apply' to write the SSH host aliases
• run 'gitid' inside a repository to bind it`, profile.ConfigPath())

	return m.layout.Render(content)
}

func (m *SetupModel) viewCancelled() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "Setup cancelled",
		Subtitle: "gitid will not be configured.",
		HelpText: "Press any key to continue",
	})

	return m.layout.Render(`Setup was cancelled. gitid needs to be configured before it can manage identities.`)
}
