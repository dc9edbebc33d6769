package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a yes/no confirmation dialog.
type confirmModel struct {
	title       string
	message     string
	yesSelected bool
	done        bool
	canceled    bool
}

// Init initializes the model
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "y", "Y":
			m.yesSelected = true
			if msg.String() == "y" || msg.String() == "Y" {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case "right", "l", "n", "N":
			m.yesSelected = false
			if msg.String() == "n" || msg.String() == "N" {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.canceled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the dialog
func (m confirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")

	if m.yesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// Confirm shows a yes/no dialog and blocks for the answer. Cancel counts
// as no.
func Confirm(title, message string) (bool, error) {
	p := tea.NewProgram(confirmModel{title: title, message: message, yesSelected: true})
	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(confirmModel)
	if !ok || m.canceled {
		return false, nil
	}
	return m.yesSelected, nil
}
