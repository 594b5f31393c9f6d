// Package tui implements the interactive pieces of the ksqlpipe CLI: the
// project setup wizard, terminal mode detection, and password prompting.
package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InitAnswers is what the setup wizard collects for a new project.
type InitAnswers struct {
	ServerURL   string
	Username    string
	OffsetReset string
	DropPause   string
}

// RunInitWizard collects project settings interactively. The boolean is
// false when the user cancelled.
func RunInitWizard(defaults InitAnswers) (InitAnswers, bool, error) {
	m := newWizardModel(defaults)

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return InitAnswers{}, false, fmt.Errorf("running setup wizard: %w", err)
	}

	w, ok := final.(wizardModel)
	if !ok || w.cancelled {
		return InitAnswers{}, false, nil
	}
	return w.answers(), true, nil
}

// wizardField is one labeled input of the wizard.
type wizardField struct {
	label    string
	input    textinput.Model
	required bool
	validate func(string) error
	err      error
}

func (f *wizardField) check() error {
	v := strings.TrimSpace(f.input.Value())
	if f.required && v == "" {
		f.err = fmt.Errorf("required")
		return f.err
	}
	if f.validate != nil && v != "" {
		f.err = f.validate(v)
		return f.err
	}
	f.err = nil
	return nil
}

type wizardKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

type wizardModel struct {
	fields    []wizardField
	focusIdx  int
	cancelled bool
	keys      wizardKeyMap

	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	errStyle   lipgloss.Style
	helpStyle  lipgloss.Style
}

func newWizardModel(defaults InitAnswers) wizardModel {
	mk := func(label, placeholder, value string) wizardField {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 256
		ti.Width = 44
		ti.SetValue(value)
		return wizardField{label: label, input: ti}
	}

	server := mk("Server URL", "http://localhost:8088", defaults.ServerURL)
	server.required = true
	server.validate = validateServerURL

	username := mk("Username (empty for no auth)", "", defaults.Username)

	offset := mk("Default auto.offset.reset", "earliest", defaults.OffsetReset)
	offset.validate = func(v string) error {
		if v != "earliest" && v != "latest" && v != "none" {
			return fmt.Errorf("must be earliest, latest, or none")
		}
		return nil
	}

	pause := mk("Pause between drop retries", "10s", defaults.DropPause)
	pause.validate = func(v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("not a duration (use 10s, 1m, ...)")
		}
		return nil
	}

	m := wizardModel{
		fields: []wizardField{server, username, offset, pause},
		keys: wizardKeyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
			Submit: key.NewBinding(key.WithKeys("enter")),
			Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
		},
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		labelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		errStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		helpStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1),
	}
	return m
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func (m wizardModel) answers() InitAnswers {
	return InitAnswers{
		ServerURL:   strings.TrimSpace(m.fields[0].input.Value()),
		Username:    strings.TrimSpace(m.fields[1].input.Value()),
		OffsetReset: strings.TrimSpace(m.fields[2].input.Value()),
		DropPause:   strings.TrimSpace(m.fields[3].input.Value()),
	}
}

// Init implements tea.Model.
func (m wizardModel) Init() tea.Cmd {
	return tea.Batch(m.fields[0].input.Focus(), textinput.Blink)
}

// Update implements tea.Model.
func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Prev):
			return m.move(-1), nil
		case key.Matches(keyMsg, m.keys.Next):
			return m.move(1), nil
		case key.Matches(keyMsg, m.keys.Submit):
			if m.focusIdx < len(m.fields)-1 {
				return m.move(1), nil
			}
			if m.checkAll() {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	f := &m.fields[m.focusIdx]
	f.input, cmd = f.input.Update(msg)
	f.check()
	return m, cmd
}

// move shifts focus by delta, refusing to leave an invalid field going
// forward.
func (m wizardModel) move(delta int) wizardModel {
	if delta > 0 && m.fields[m.focusIdx].check() != nil {
		return m
	}

	next := m.focusIdx + delta
	if next < 0 || next >= len(m.fields) {
		return m
	}

	m.fields[m.focusIdx].input.Blur()
	m.focusIdx = next
	m.fields[m.focusIdx].input.Focus()
	return m
}

func (m *wizardModel) checkAll() bool {
	ok := true
	for i := range m.fields {
		if m.fields[i].check() != nil {
			ok = false
		}
	}
	return ok
}

// View implements tea.Model.
func (m wizardModel) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("ksqlpipe project setup"))
	b.WriteString("\n\n")

	for i := range m.fields {
		f := &m.fields[i]

		label := f.label
		if f.required {
			label += m.errStyle.Render(" *")
		}
		b.WriteString(m.labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		if f.err != nil {
			b.WriteString("\n")
			b.WriteString(m.errStyle.Render(f.err.Error()))
		}
		if i < len(m.fields)-1 {
			b.WriteString("\n\n")
		}
	}

	b.WriteString(m.helpStyle.Render("\ntab next • shift+tab prev • enter submit • esc cancel"))
	return b.String()
}
