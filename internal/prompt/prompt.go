// Package prompt is the thin interactive shell around the fetch pipeline.
// It only collects input and renders confirmations; every decision about
// filenames and transfers lives elsewhere.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	subtleStyle = lipgloss.NewStyle().Faint(true)
)

// URLModel collects a single URL from the user.
type URLModel struct {
	input   textinput.Model
	aborted bool
}

func NewURL() *URLModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "https://example.com/picture.png"
	ti.CharLimit = 2048
	ti.Focus()
	return &URLModel{input: ti}
}

func (m *URLModel) Init() tea.Cmd { return textinput.Blink }

func (m *URLModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *URLModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Fetch Image") + "\n")
	b.WriteString("Enter the image URL (or press Enter on an empty line to quit):\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(subtleStyle.Render("esc to cancel") + "\n")
	return b.String()
}

// Value returns the entered URL, empty when aborted or left blank.
func (m *URLModel) Value() string {
	if m.aborted {
		return ""
	}
	return strings.TrimSpace(m.input.Value())
}

// Aborted reports whether the user cancelled instead of submitting.
func (m *URLModel) Aborted() bool { return m.aborted }

// AskURL runs the URL prompt and returns what the user typed. aborted is
// true when the prompt was cancelled (esc or ctrl+c), which is distinct
// from submitting an empty line.
func AskURL() (url string, aborted bool, err error) {
	p := tea.NewProgram(NewURL())
	out, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m := out.(*URLModel)
	return m.Value(), m.Aborted(), nil
}

// ConfirmModel asks a yes/no question, defaulting to yes.
type ConfirmModel struct {
	question string
	detail   string
	answer   bool
}

func NewConfirm(question, detail string) *ConfirmModel {
	return &ConfirmModel{question: question, detail: detail, answer: true}
}

func (m *ConfirmModel) Init() tea.Cmd { return nil }

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.answer = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.answer = false
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ConfirmModel) View() string {
	var b strings.Builder
	if m.detail != "" {
		b.WriteString("Saving to: " + pathStyle.Render(m.detail) + "\n")
	}
	b.WriteString(m.question + " " + subtleStyle.Render("(Y/n)") + "\n")
	return b.String()
}

func (m *ConfirmModel) Answer() bool { return m.answer }

// Confirm runs the confirmation prompt. detail is shown above the question
// when non-empty.
func Confirm(question, detail string) (bool, error) {
	p := tea.NewProgram(NewConfirm(question, detail))
	out, err := p.Run()
	if err != nil {
		return false, err
	}
	return out.(*ConfirmModel).Answer(), nil
}
