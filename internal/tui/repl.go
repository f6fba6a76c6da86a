// repl.go is the chat-style REPL model driving the phase-gate engine.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tars-dev/tars/internal/engine"
	"github.com/tars-dev/tars/internal/session"
	"github.com/tars-dev/tars/prompts"
)

// chatLine is one rendered transcript entry.
type chatLine struct {
	role    string // "user", "tars", "error", "warn"
	content string
}

// replyMsg carries the engine's response back into the update loop.
type replyMsg struct {
	resp engine.Response
	err  error
}

// ReplModel is the Bubble Tea model for the interactive session.
type ReplModel struct {
	eng       *engine.Engine
	sessionID string

	lines    []chatLine
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	loading  bool
	ready    bool
	width    int
	height   int
	phase    string
	role     string
}

// NewReplModel creates the REPL bound to an engine. A non-nil resumed
// session reopens the transcript mid-phase instead of at the welcome.
func NewReplModel(eng *engine.Engine, resumed *session.Session) ReplModel {
	ti := textinput.New()
	ti.Placeholder = "/issue, /feature, plan, proceed, done, or draft text"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := ReplModel{
		eng:     eng,
		input:   ti,
		spinner: sp,
		phase:   "idle",
		role:    "architect",
		lines:   []chatLine{{role: "tars", content: prompts.Welcome}},
	}
	if resumed != nil {
		m.sessionID = resumed.ID
		m.phase = string(resumed.Phase)
		m.role = string(resumed.Role)
		m.lines = append(m.lines, chatLine{
			role:    "tars",
			content: fmt.Sprintf("resumed session %s (%s)", resumed.ID, resumed.Task),
		})
	}
	return m
}

// Init implements tea.Model.
func (m ReplModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ReplModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.loading {
				return m, nil
			}
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.lines = append(m.lines, chatLine{role: "user", content: raw})
			m.refreshViewport()
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.applyCmd(raw))
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.lines = append(m.lines, chatLine{role: "error", content: msg.err.Error()})
			m.refreshViewport()
			return m, nil
		}
		m = m.absorb(msg.resp)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// applyCmd runs the engine off the update loop.
func (m ReplModel) applyCmd(raw string) tea.Cmd {
	eng, sessionID := m.eng, m.sessionID
	return func() tea.Msg {
		resp, err := eng.Apply(context.Background(), sessionID, raw)
		return replyMsg{resp: resp, err: err}
	}
}

// absorb folds an engine response into the transcript and status bar.
func (m ReplModel) absorb(resp engine.Response) ReplModel {
	prevSession := m.sessionID
	if resp.SessionID != "" {
		m.sessionID = resp.SessionID
	}
	m.phase = string(resp.Phase)
	m.role = string(resp.Role)

	switch resp.Kind {
	case engine.Rejected:
		m.lines = append(m.lines, chatLine{role: "error", content: resp.Message})
	case engine.ValidationFailed:
		m.lines = append(m.lines, chatLine{
			role:    "warn",
			content: fmt.Sprintf("still missing: %s", strings.Join(resp.Missing, ", ")),
		})
	default:
		m.lines = append(m.lines, chatLine{role: "tars", content: resp.Message})
	}

	// Surface the role briefing when the phase handed off.
	if resp.Kind == engine.Accepted && resp.Phase == "intake" && prevSession == "" {
		m.lines = append(m.lines, chatLine{role: "tars", content: prompts.ArchitectBrief})
	}
	if resp.Kind == engine.Accepted && resp.Phase == "executing" {
		m.lines = append(m.lines, chatLine{role: "tars", content: prompts.BuilderBrief})
	}

	for _, q := range m.eng.Clarifications(m.sessionID) {
		m.lines = append(m.lines, chatLine{role: "warn", content: "question: " + q})
	}

	m.refreshViewport()
	return m
}

// refreshViewport re-renders the transcript into the viewport.
func (m *ReplModel) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, line := range m.lines {
		switch line.role {
		case "user":
			b.WriteString(TitleStyle.Render("> ") + line.content)
		case "error":
			b.WriteString(ErrorStyle.Render(line.content))
		case "warn":
			b.WriteString(WarningStyle.Render(line.content))
		default:
			b.WriteString(line.content)
		}
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m ReplModel) View() string {
	if !m.ready {
		return "loading..."
	}

	status := StatusBarStyle.Render(fmt.Sprintf("phase: %s  role: %s", m.phase, m.role))
	inputLine := m.input.View()
	if m.loading {
		inputLine = m.spinner.View() + " thinking..."
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n", status, m.viewport.View(), inputLine)
}
