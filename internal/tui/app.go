package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"decisionflow/internal/client"
	"decisionflow/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

type transcriptEntry struct {
	role string
	text string
}

type replyMsg struct {
	text string
	err  error
}

type model struct {
	cli        *client.Client
	logger     *utils.Logger
	url        string
	input      textinput.Model
	viewport   viewport.Model
	spin       spinner.Model
	transcript []transcriptEntry
	waiting    bool
	ready      bool
	width      int
	height     int
	quitting   bool
}

// Run starts the interactive chat client against the agent at url.
func Run(cli *client.Client, url string, logger *utils.Logger) error {
	input := textinput.New()
	input.Placeholder = "Enter your request (ctrl+c to quit)"
	input.Focus()
	input.CharLimit = 2000

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = dimStyle

	m := model{
		cli:    cli,
		logger: logger,
		url:    url,
		input:  input,
		spin:   spin,
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.transcript = append(m.transcript, transcriptEntry{role: "user", text: text})
			m.waiting = true
			m.refreshViewport()
			return m, tea.Batch(m.spin.Tick, m.sendCmd(text))
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.logger.Errorf("request failed: %v", msg.err)
			m.transcript = append(m.transcript, transcriptEntry{role: "error", text: "No response received from the agents"})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{role: "agent", text: msg.text})
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting {
		return "Thank you for using Decision Flow!\n"
	}
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render("Decision Flow Client") + dimStyle.Render("  "+m.url)
	footer := footerStyle.Render("enter: send | ctrl+c: quit")
	inputLine := m.input.View()
	if m.waiting {
		inputLine = m.spin.View() + " waiting for agent..."
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.viewport.View(), inputLine, footer)
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return dimStyle.Render("Send a request to get started.")
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	for _, entry := range m.transcript {
		var label, body string
		switch entry.role {
		case "user":
			label = userStyle.Render("you")
			body = entry.text
		case "agent":
			label = agentStyle.Render("agent")
			body = entry.text
		default:
			label = errStyle.Render("error")
			body = entry.text
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(ansi.Wordwrap(body, width-2, " "))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m model) sendCmd(text string) tea.Cmd {
	url := m.url
	cli := m.cli
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := cli.SendText(ctx, url, text)
		return replyMsg{text: reply, err: err}
	}
}
