package ui

import (
	"strings"

	"github.com/Cyclone1070/toolgate/internal/confirmation"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// approvalModel asks the user about one confirmation request.
type approvalModel struct {
	req     confirmation.Request
	preview string
	styles  Styles
	reason  textinput.Model
	width   int

	// asking is set while the user types a denial reason.
	asking   bool
	decided  bool
	approved bool
	// always is set when the user allowed the tool for the rest of the session.
	always bool
}

func newApprovalModel(req confirmation.Request, preview string, styles Styles) approvalModel {
	ti := textinput.New()
	ti.Placeholder = "reason (optional)"
	ti.CharLimit = 200
	return approvalModel{
		req:     req,
		preview: preview,
		styles:  styles,
		reason:  ti,
	}
}

func (m approvalModel) Init() tea.Cmd {
	return nil
}

func (m approvalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.decide(false)
		}

		if m.asking {
			switch msg.Type {
			case tea.KeyEnter:
				return m.decide(false)
			case tea.KeyEsc:
				m.asking = false
				m.reason.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.reason, cmd = m.reason.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "y", "Y", "enter":
			return m.decide(true)
		case "a", "A":
			m.always = true
			return m.decide(true)
		case "n", "N":
			m.asking = true
			return m, m.reason.Focus()
		case "esc":
			return m.decide(false)
		}
	}
	return m, nil
}

func (m approvalModel) decide(approved bool) (tea.Model, tea.Cmd) {
	m.decided = true
	m.approved = approved
	return m, tea.Quit
}

// response builds the answer for the bus. An undecided prompt refuses.
func (m approvalModel) response() confirmation.Response {
	if m.decided && m.approved {
		return confirmation.Approve(m.req)
	}
	return confirmation.Refuse(m.req, strings.TrimSpace(m.reason.Value()))
}

func (m approvalModel) View() string {
	if m.decided {
		return ""
	}

	lines := []string{m.styles.Title.Render("Allow " + m.req.ToolName + "?")}
	if m.req.Description != "" {
		lines = append(lines, m.styles.Desc.Render(m.req.Description))
	}
	if m.preview != "" {
		lines = append(lines, "", m.preview)
	}
	lines = append(lines, "")

	if m.asking {
		lines = append(lines,
			m.styles.Deny.Render("Deny")+" with reason: "+m.reason.View(),
			"",
			m.styles.Help.Render("enter: submit  esc: back"),
		)
	} else {
		lines = append(lines,
			m.styles.Help.Render(m.styles.Allow.Render("y")+"/enter: allow  "+m.styles.Allow.Render("a")+": always allow "+m.req.ToolName+"  "+m.styles.Deny.Render("n")+": deny with reason  esc: deny"),
		)
	}

	box := m.styles.Box
	if m.width > 4 {
		box = box.MaxWidth(m.width)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}
