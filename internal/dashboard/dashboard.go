// Package dashboard renders a live-updating view of a build's plan-node
// progress. It is purely a consumer of internal/executor.Event — it never
// touches staleness or store logic, matching SPEC_FULL.md §9's "purely a
// consumer of executor progress events" requirement.
//
// Grounded on the teacher's internal/nebula/dashboard.go (the overall
// "status icon per unit of work, rendered as a list under a header/budget
// frame" shape) and internal/tui's bubbletea/lipgloss model, generalized
// from nebula phases to compile/archive/link/template nodes.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgebuild/forge/internal/executor"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleFailed  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFresh   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleDivider = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NodeStatus is the last-known state of one plan node, for rendering.
type NodeStatus int

const (
	StatusPending NodeStatus = iota
	StatusRunning
	StatusFreshSkip
	StatusDone
	StatusFailed
	StatusUpstreamSkip
)

// EventMsg wraps one executor.Event as a bubbletea message.
type EventMsg executor.Event

// DoneMsg signals the event stream closed (the build finished or failed).
type DoneMsg struct{ Err error }

// Model is the bubbletea model driving the dashboard.
type Model struct {
	Name   string
	Events <-chan executor.Event

	order    []string
	statuses map[string]NodeStatus
	errs     map[string]error
	done     bool
	finalErr error
}

// New creates a dashboard model. order lists every node ID in the plan's
// topological order, so the rendered list never reorders as events
// arrive.
func New(name string, order []string, events <-chan executor.Event) Model {
	statuses := make(map[string]NodeStatus, len(order))
	for _, id := range order {
		statuses[id] = StatusPending
	}
	return Model{
		Name:     name,
		Events:   events,
		order:    append([]string(nil), order...),
		statuses: statuses,
		errs:     map[string]error{},
	}
}

// Init starts listening for executor events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.Events)
}

func waitForEvent(ch <-chan executor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return DoneMsg{}
		}
		return EventMsg(ev)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.applyEvent(executor.Event(msg))
		if m.done {
			return m, nil
		}
		return m, waitForEvent(m.Events)
	case DoneMsg:
		m.done = true
		m.finalErr = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) applyEvent(ev executor.Event) {
	switch ev.Kind {
	case executor.EventStarted:
		m.statuses[ev.NodeID] = StatusRunning
	case executor.EventSkippedFresh:
		m.statuses[ev.NodeID] = StatusFreshSkip
	case executor.EventFinished:
		m.statuses[ev.NodeID] = StatusDone
	case executor.EventFailed:
		m.statuses[ev.NodeID] = StatusFailed
		m.errs[ev.NodeID] = ev.Err
	case executor.EventSkippedUpstream:
		m.statuses[ev.NodeID] = StatusUpstreamSkip
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	completed, running, total := m.counts()
	fmt.Fprintln(&b, styleHeader.Render(fmt.Sprintf("forge: %s", m.Name))+
		styleDim.Render(fmt.Sprintf("  [%d/%d done, %d running]", completed, total, running)))
	fmt.Fprintln(&b, styleDivider.Render(strings.Repeat("─", 48)))

	for _, id := range m.order {
		fmt.Fprintf(&b, "  %s %s\n", icon(m.statuses[id]), id)
	}

	if m.done && m.finalErr != nil {
		fmt.Fprintln(&b, styleDivider.Render(strings.Repeat("─", 48)))
		fmt.Fprintln(&b, styleFailed.Render("build failed: "+m.finalErr.Error()))
	}

	return b.String()
}

func (m Model) counts() (completed, running, total int) {
	total = len(m.order)
	for _, s := range m.statuses {
		switch s {
		case StatusDone, StatusFailed, StatusFreshSkip, StatusUpstreamSkip:
			completed++
		case StatusRunning:
			running++
		}
	}
	return completed, running, total
}

func icon(s NodeStatus) string {
	switch s {
	case StatusDone:
		return styleDone.Render("[done]")
	case StatusRunning:
		return styleRunning.Render("[>>>>]")
	case StatusFreshSkip:
		return styleFresh.Render("[skip]")
	case StatusFailed:
		return styleFailed.Render("[FAIL]")
	case StatusUpstreamSkip:
		return styleSkipped.Render("[drop]")
	default:
		return styleDim.Render("[wait]")
	}
}

// SortedOrder is a convenience for callers that only have a set of node
// IDs (e.g. from a graph.Graph) and want a deterministic render order.
func SortedOrder(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
