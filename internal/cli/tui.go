package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/logical"
	"github.com/matzehuels/typeviz/pkg/query"
	"github.com/matzehuels/typeviz/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Answer summaries
// =============================================================================

// binding is one variable of an answer row.
type binding struct {
	Variable string
	Kind     concept.Kind
	Label    string
}

// answerSummary is what the browser shows for one answer.
type answerSummary struct {
	Index    int
	Branches []int
	Bindings []binding
	Edges    []string // "from -kind-> to", drawn edges first
	Drawn    int
	Unbound  int
}

// summarizeAnswers pairs each row with its logical edges. draw decides
// which edges count as drawn.
func summarizeAnswers(resp *query.Response, g *logical.Graph, draw convert.DrawSet) []answerSummary {
	out := make([]answerSummary, len(g.Answers))
	for i, edges := range g.Answers {
		s := answerSummary{Index: i}
		if i < len(resp.Answers) {
			row := resp.Answers[i]
			s.Branches = row.Branches()
			for _, name := range sortedVariables(row) {
				c := row.Data[name]
				s.Bindings = append(s.Bindings, binding{Variable: name, Kind: c.Kind(), Label: render.HoverLabel(c)})
			}
		}

		var drawn, hidden []string
		for _, e := range edges {
			line := describeEdge(g, e)
			if draw.Contains(e.Coordinates) {
				drawn = append(drawn, line)
			} else {
				hidden = append(hidden, line+" (hidden)")
			}
			if v, ok := g.Vertex(e.To); ok && v.Kind() == concept.KindUnavailable {
				s.Unbound++
			}
			if v, ok := g.Vertex(e.From); ok && v.Kind() == concept.KindUnavailable {
				s.Unbound++
			}
		}
		s.Drawn = len(drawn)
		s.Edges = append(drawn, hidden...)
		out[i] = s
	}
	return out
}

func sortedVariables(row query.Row) []string {
	names := make([]string, 0, len(row.Data))
	for name := range row.Data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func describeEdge(g *logical.Graph, e logical.Edge) string {
	label := func(id string) string {
		if v, ok := g.Vertex(id); ok {
			return render.DefaultLabel(v)
		}
		return id
	}
	kind := string(e.Kind)
	if e.Param != nil {
		kind += "[" + render.DefaultLabel(e.Param) + "]"
	}
	return fmt.Sprintf("%s %s -%s-> %s", e.Coordinates, label(e.From), kind, label(e.To))
}

// =============================================================================
// AnswerListModel - Interactive answer browser
// =============================================================================

// AnswerListModel is the bubbletea model for browsing the answers of a
// query response. Enter selects an answer to highlight.
type AnswerListModel struct {
	Answers  []answerSummary
	Cursor   int
	Selected *int
	Height   int
	Offset   int
	Detail   bool
}

// NewAnswerListModel creates a new answer list model.
func NewAnswerListModel(answers []answerSummary) AnswerListModel {
	return AnswerListModel{
		Answers: answers,
		Height:  10,
		Detail:  true,
	}
}

func (m AnswerListModel) Init() tea.Cmd {
	return nil
}

func (m AnswerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Answers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Answers)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "tab", "d":
			m.Detail = !m.Detail
		case "enter":
			if len(m.Answers) == 0 {
				return m, nil
			}
			idx := m.Answers[m.Cursor].Index
			m.Selected = &idx
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height/2-6, 3)
	}
	return m, nil
}

func (m AnswerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Answers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab details  ⏎ highlight  q quit"))
	b.WriteString("\n\n")

	if len(m.Answers) == 0 {
		b.WriteString(listDimStyle.Render("  no answers"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Answers))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		a := m.Answers[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		vars := make([]string, len(a.Bindings))
		for j, bd := range a.Bindings {
			vars[j] = "$" + bd.Variable
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", a.Index),
			formatBranches(a.Branches),
			fmt.Sprintf("%d/%d", a.Drawn, len(a.Edges)),
			fmt.Sprintf("%d", a.Unbound),
			truncate(strings.Join(vars, " "), 40),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Branches", "Edges", "Unbound", "Variables").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Answers) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 && m.Answers[idx].Unbound > 0 {
				base = base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Answers))))
	b.WriteString("\n")

	if m.Detail {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.Answers[m.Cursor]))
	}
	return b.String()
}

func (m AnswerListModel) detailView(a answerSummary) string {
	var b strings.Builder
	for _, bd := range a.Bindings {
		line := fmt.Sprintf("  $%-12s %s %s", bd.Variable, StyleKind.Render(fmt.Sprintf("%-14s", bd.Kind)), bd.Label)
		b.WriteString(listNormalStyle.Render(line))
		b.WriteString("\n")
	}
	if len(a.Bindings) > 0 {
		b.WriteString("\n")
	}
	for i, e := range a.Edges {
		if i < a.Drawn {
			b.WriteString(listSelectedStyle.Render("  " + e))
		} else {
			b.WriteString(listDimStyle.Render("  " + e))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatBranches(branches []int) string {
	parts := make([]string, len(branches))
	for i, b := range branches {
		parts[i] = fmt.Sprintf("%d", b)
	}
	return strings.Join(parts, ",")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
