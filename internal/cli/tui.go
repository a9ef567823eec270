package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// previewWidth caps the entry column in the list view.
const previewWidth = 48

// =============================================================================
// MalformedListModel - Interactive malformed entry browser
// =============================================================================

// MalformedListModel is the bubbletea model for browsing skipped entries.
// Enter toggles a detail view with the full entry JSON.
type MalformedListModel struct {
	Entries []labelgraph.MalformedEntry
	Cursor  int
	Height  int
	Offset  int
	Detail  bool
}

// NewMalformedListModel creates a new malformed entry list model.
func NewMalformedListModel(entries []labelgraph.MalformedEntry) MalformedListModel {
	return MalformedListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m MalformedListModel) Init() tea.Cmd {
	return nil
}

func (m MalformedListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) > 0 {
				m.Detail = !m.Detail
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MalformedListModel) View() string {
	if len(m.Entries) == 0 {
		return StyleTitle.Render("No malformed entries") + "\n"
	}
	if m.Detail {
		return m.detailView()
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Malformed Entries"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		artist := e.Artist
		if artist == "" {
			artist = "—"
		}
		rows = append(rows, []string{cursor, strconv.Itoa(i + 1), e.Reason, artist, preview(e.Entry, previewWidth)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Reason", "Artist", "Entry").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if m.Offset+row == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 4 {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

func (m MalformedListModel) detailView() string {
	e := m.Entries[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Entry %d of %d", m.Cursor+1, len(m.Entries))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")
	b.WriteString(listSelectedStyle.Render(e.Reason))
	if e.Artist != "" {
		b.WriteString(listDimStyle.Render("  artist: ") + StyleValue.Render(e.Artist))
	}
	b.WriteString("\n\n")

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, e.Entry, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(e.Entry)
	}
	b.WriteString(pretty.String())
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// preview compacts raw JSON onto one line and truncates it to width runes.
func preview(raw json.RawMessage, width int) string {
	var buf bytes.Buffer
	s := string(raw)
	if err := json.Compact(&buf, raw); err == nil {
		s = buf.String()
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
