// Package tui is the terminal control surface. Every committed change to a control
// sends exactly one intent to the bridge; engine snapshots are polled once per frame.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/room4-2/basslink/messages"
	"github.com/room4-2/basslink/queue"
)

// DefaultFrameInterval paces the snapshot poll.
const DefaultFrameInterval = 16 * time.Millisecond

// tickMsg drives the frame loop.
type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model for the synth panel.
type Model struct {
	controls []control
	cursor   int
	patch    messages.Patch

	policy    SnapshotPolicy
	intents   *queue.Sender[messages.Intent]
	snapshots *queue.Receiver[messages.Patch]
	frame     time.Duration
	log       *logrus.Entry

	received uint64
	linkDown bool
	status   string
	width    int
	theme    Theme
}

// New creates the panel. It owns the intent sender and closes it on quit, which is how
// the bridge learns the UI is gone.
func New(intents *queue.Sender[messages.Intent], snapshots *queue.Receiver[messages.Patch], policy SnapshotPolicy, log *logrus.Entry) Model {
	return Model{
		controls:  panelControls(),
		patch:     messages.DefaultPatch(),
		policy:    policy,
		intents:   intents,
		snapshots: snapshots,
		frame:     DefaultFrameInterval,
		log:       log.WithField("component", "tui"),
		theme:     DefaultTheme(),
	}
}

// Patch returns the displayed patch.
func (m Model) Patch() messages.Patch { return m.patch }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.frame)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m = m.pollSnapshot()
		return m, tickCmd(m.frame)
	}
	return m, nil
}

// pollSnapshot takes at most one snapshot off the queue.
func (m Model) pollSnapshot() Model {
	if m.linkDown {
		return m
	}
	p, err := m.snapshots.TryRecv()
	switch {
	case err == nil:
		m.received++
		m.patch = m.policy.Merge(m.patch, p)
	case errors.Is(err, queue.ErrDisconnected):
		m.linkDown = true
		m.status = "engine link closed"
		m.log.Warn("Snapshot queue disconnected")
	}
	return m
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.intents.Close()
		return m, tea.Quit
	case "j", "down", "tab":
		m.cursor = (m.cursor + 1) % len(m.controls)
	case "k", "up", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.controls)) % len(m.controls)
	case "l", "right":
		m = m.adjust(1, false)
	case "h", "left":
		m = m.adjust(-1, false)
	case "L", "shift+right", "pgup":
		m = m.adjust(1, true)
	case "H", "shift+left", "pgdown":
		m = m.adjust(-1, true)
	}
	return m, nil
}

// adjust changes the selected control and sends the matching intent.
func (m Model) adjust(steps int, big bool) Model {
	c := m.controls[m.cursor]
	in, ok := c.adjust(&m.patch, steps, big)
	if !ok {
		return m
	}
	if err := m.intents.Send(in); err != nil {
		m.status = fmt.Sprintf("not sent: %v", err)
		m.log.WithError(err).Warn("Intent not queued")
		return m
	}
	m.status = fmt.Sprintf("%s %s → %s", strings.ToLower(c.group), c.label, c.display(&m.patch))
	return m
}

// View implements tea.Model.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary)
	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).MarginTop(1)
	label := lipgloss.NewStyle().Width(12)
	selected := lipgloss.NewStyle().Reverse(true)
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	var b strings.Builder
	b.WriteString(title.Render("basslink"))
	b.WriteString("\n")

	group := ""
	for i, c := range m.controls {
		if c.group != group {
			group = c.group
			b.WriteString(groupStyle.Render(group))
			b.WriteString("\n")
		}
		row := label.Render(c.label) + c.display(&m.patch)
		if i == m.cursor {
			row = selected.Render(row)
		}
		b.WriteString("  " + row + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(muted.Render("↑/↓ select  ←/→ adjust  H/L coarse  q quit"))
	return b.String()
}

func (m Model) renderStatusBar() string {
	link := lipgloss.NewStyle().Foreground(m.theme.Success).Render("● linked")
	if m.linkDown {
		link = lipgloss.NewStyle().Foreground(m.theme.Error).Render("● offline")
	}
	parts := []string{
		link,
		fmt.Sprintf("snapshots %d (%s)", m.received, m.policy),
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  ")
}
