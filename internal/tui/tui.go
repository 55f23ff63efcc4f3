// Package tui is a terminal viewer for browsing journal history.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/cldixon/moodjournal/internal/history"
	"github.com/cldixon/moodjournal/internal/mood"
	"github.com/cldixon/moodjournal/internal/store"
)

// Styles
var (
	listStyle = lipgloss.NewStyle().
			Padding(1, 2)

	viewportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F2B705")).
			Bold(true)
)

// filters is the cycle order for the mood filter key, starting at All
var filters = append([]mood.Mood{""}, mood.All()...)

// entryItem wraps a store.Entry for the list
type entryItem struct {
	entry *store.Entry
}

func (i entryItem) Title() string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(i.entry.Mood.Color())).Render("●")
	return fmt.Sprintf("%s %s", dot, i.entry.Mood)
}

func (i entryItem) Description() string {
	return i.entry.Timestamp.Local().Format("Jan 02, 2006 3:04 PM")
}

func (i entryItem) FilterValue() string {
	return i.entry.Text
}

// Model is the main TUI model
type Model struct {
	list     list.Model
	viewport viewport.Model
	entries  []*store.Entry
	filter   int
	ready    bool
	renderer *glamour.TermRenderer
	quitting bool
}

// New creates a viewer over entries, which are expected oldest first
func New(entries []*store.Entry) (*Model, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		BorderLeftForeground(lipgloss.Color("#F2B705"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("241")).
		BorderLeftForeground(lipgloss.Color("#F2B705"))

	l := list.New(nil, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	m := &Model{
		list:     l,
		entries:  entries,
		renderer: renderer,
	}
	m.applyFilter()
	return m, nil
}

// Filter returns the active mood filter; the zero Mood means All
func (m *Model) Filter() mood.Mood {
	return filters[m.filter]
}

// cycleFilter moves to the next mood filter, wrapping back to All
func (m *Model) cycleFilter() {
	m.filter = (m.filter + 1) % len(filters)
	m.applyFilter()
}

func (m *Model) applyFilter() {
	visible := history.Newest(m.entries, m.Filter())
	items := make([]list.Item, len(visible))
	for i, e := range visible {
		items[i] = entryItem{entry: e}
	}
	m.list.SetItems(items)
	m.list.Select(0)

	label := mood.FilterAll
	if f := m.Filter(); f != "" {
		label = f.String()
	}
	m.list.Title = fmt.Sprintf("moodjournal · %s (%d)", label, len(visible))

	m.updateViewportContent()
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// keys belong to the search box while the user is typing a filter
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			case "m":
				m.cycleFilter()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		listWidth := msg.Width / 3
		viewportWidth := msg.Width - listWidth - 4

		m.list.SetSize(listWidth, msg.Height-2)
		m.viewport = viewport.New(viewportWidth, msg.Height-7)
		m.viewport.Style = viewportStyle

		m.ready = true
		m.updateViewportContent()
	}

	prev := m.list.SelectedItem()
	var listCmd tea.Cmd
	m.list, listCmd = m.list.Update(msg)
	cmds = append(cmds, listCmd)

	if m.list.SelectedItem() != prev {
		m.updateViewportContent()
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// entryMarkdown lays out one entry for the reading pane
func entryMarkdown(e *store.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Mood)
	fmt.Fprintf(&b, "**Date:** %s\n\n", e.Timestamp.Local().Format("Monday, January 02, 2006 at 3:04 PM"))
	b.WriteString("---\n\n")
	b.WriteString(e.Text)
	if e.Reflection != "" {
		b.WriteString("\n\n## Reflection\n\n")
		b.WriteString(e.Reflection)
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	selected, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		if len(m.entries) == 0 {
			m.viewport.SetContent("No entries yet. Write one with 'moodjournal new' or 'moodjournal serve'.")
		} else {
			m.viewport.SetContent("No entries match this mood. Press m to change the filter.")
		}
		return
	}

	rendered, err := m.renderer.Render(entryMarkdown(selected.entry))
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Error rendering: %v", err))
		return
	}
	m.viewport.SetContent(rendered)
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("m: cycle mood filter · /: search · q: quit")
	right := lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), help)
	return lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(m.list.View()), right)
}

// Run starts the TUI
func Run(entries []*store.Entry) error {
	m, err := New(entries)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
