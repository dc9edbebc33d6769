package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Outcome is the result of an attempt-limited prompt.
type Outcome int

const (
	// Accepted means the user supplied a usable value.
	Accepted Outcome = iota
	// Abandoned means the user backed out or ran out of attempts.
	Abandoned
)

// DefaultMaxAttempts bounds reprompting on malformed input. There are no
// unbounded retry loops anywhere in the UI.
const DefaultMaxAttempts = 3

// Prompter issues line-based prompts. One Prompter serves one session.
type Prompter struct {
	MaxAttempts int
}

// NewPrompter creates a Prompter with the default attempt limit.
func NewPrompter() *Prompter {
	return &Prompter{MaxAttempts: DefaultMaxAttempts}
}

// promptModel is a single-field text input.
type promptModel struct {
	input    textinput.Model
	label    string
	done     bool
	canceled bool
}

func newPromptModel(label string, masked bool) promptModel {
	ti := textinput.New()
	ti.Placeholder = ""
	ti.CharLimit = 255
	ti.Width = 40
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()

	return promptModel{input: ti, label: label}
}

// Init initializes the model
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt
func (m promptModel) View() string {
	return promptLabelStyle.Render(m.label) + "\n" + m.input.View() + "\n" +
		helpStyle.Render(FormatKey("enter", "submit")+" • "+FormatKey("esc", "cancel"))
}

func runPrompt(label string, masked bool) (string, Outcome, error) {
	p := tea.NewProgram(newPromptModel(label, masked))
	final, err := p.Run()
	if err != nil {
		return "", Abandoned, err
	}

	m, ok := final.(promptModel)
	if !ok || m.canceled {
		return "", Abandoned, nil
	}
	return strings.TrimSpace(m.input.Value()), Accepted, nil
}

// Line prompts for one line of free text.
func (p *Prompter) Line(label string) (string, Outcome, error) {
	return runPrompt(label, false)
}

// Password prompts for a masked line.
func (p *Prompter) Password(label string) (string, Outcome, error) {
	return runPrompt(label, true)
}

// Int prompts for an integer, reprompting on malformed input up to the
// attempt limit.
func (p *Prompter) Int(label string) (int, Outcome, error) {
	for attempt := 0; attempt < p.attempts(); attempt++ {
		raw, outcome, err := runPrompt(label, false)
		if err != nil || outcome == Abandoned {
			return 0, Abandoned, err
		}

		n, convErr := strconv.Atoi(raw)
		if convErr == nil {
			return n, Accepted, nil
		}
		fmt.Println(warningStyle.Render("Not a whole number, try again."))
	}
	return 0, Abandoned, nil
}

// Float prompts for a decimal number, reprompting on malformed input up to
// the attempt limit.
func (p *Prompter) Float(label string) (float64, Outcome, error) {
	for attempt := 0; attempt < p.attempts(); attempt++ {
		raw, outcome, err := runPrompt(label, false)
		if err != nil || outcome == Abandoned {
			return 0, Abandoned, err
		}

		f, convErr := strconv.ParseFloat(raw, 64)
		if convErr == nil {
			return f, Accepted, nil
		}
		fmt.Println(warningStyle.Render("Not a number, try again."))
	}
	return 0, Abandoned, nil
}

func (p *Prompter) attempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return DefaultMaxAttempts
}
