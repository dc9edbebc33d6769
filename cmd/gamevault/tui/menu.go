// Package tui implements the interactive console widgets: numbered menus,
// confirmation dialogs, and attempt-limited input prompts.
package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem is one numbered entry in a menu.
type MenuItem struct {
	Key   int
	Label string
	Note  string
}

func (i MenuItem) FilterValue() string { return i.Label }

// Title renders the numbered label.
func (i MenuItem) Title() string { return fmt.Sprintf("%2d. %s", i.Key, i.Label) }

// menuItemDelegate is a custom delegate for menu entries.
type menuItemDelegate struct{}

func (d menuItemDelegate) Height() int                             { return 1 }
func (d menuItemDelegate) Spacing() int                            { return 0 }
func (d menuItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d menuItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(MenuItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title())
	}
	if i.Note != "" {
		s += " " + mutedStyle.Render("("+i.Note+")")
	}

	_, _ = fmt.Fprint(w, s)
}

// menuModel is the Bubbletea model behind RunMenu.
type menuModel struct {
	list   list.Model
	items  []MenuItem
	choice *MenuItem
	quit   bool
	width  int
	height int
}

func newMenuModel(title string, items []MenuItem) menuModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, menuItemDelegate{}, 60, len(items)+8)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	return menuModel{list: l, items: items}
}

// Init initializes the model
func (m menuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, min(msg.Height-4, len(m.items)+8))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quit = true
			return m, tea.Quit

		case "enter", " ":
			if item, ok := m.list.SelectedItem().(MenuItem); ok {
				m.choice = &item
			}
			return m, tea.Quit

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			// Digit shortcut: jump the cursor to the entry with that key.
			key, _ := strconv.Atoi(msg.String())
			for i, item := range m.items {
				if item.Key == key {
					m.list.Select(i)
					break
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the menu
func (m menuModel) View() string {
	help := helpStyle.Render(
		FormatKey("↑/↓", "navigate") + " • " +
			FormatKey("enter", "select") + " • " +
			FormatKey("q", "back"),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		help,
	)
}

// RunMenu shows a numbered menu and blocks until the user picks an entry or
// backs out. Returns the picked entry's key, or ok=false when the user quit.
func RunMenu(title string, items []MenuItem) (key int, ok bool, err error) {
	p := tea.NewProgram(newMenuModel(title, items))
	final, err := p.Run()
	if err != nil {
		return 0, false, err
	}

	m, isMenu := final.(menuModel)
	if !isMenu || m.quit || m.choice == nil {
		return 0, false, nil
	}
	return m.choice.Key, true, nil
}
