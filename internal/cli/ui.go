package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/typeviz/pkg/pipeline"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the status output and the answer browser.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleKind      = lipgloss.NewStyle().Foreground(colorYellow)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// status prints human-oriented progress lines. Commands write it to stderr
// so artifacts piped through stdout stay clean.
type status struct {
	w io.Writer
}

func newStatus(w io.Writer) status { return status{w: w} }

func (s status) line(icon lipgloss.Style, glyph, msg string) {
	fmt.Fprintln(s.w, icon.Render(glyph)+" "+msg)
}

func (s status) success(format string, args ...any) {
	s.line(styleIconSuccess, "✓", fmt.Sprintf(format, args...))
}

func (s status) failure(format string, args ...any) {
	s.line(styleIconError, "✗", fmt.Sprintf(format, args...))
}

func (s status) warn(format string, args ...any) {
	s.line(StyleWarning, "!", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (s status) info(format string, args ...any) {
	s.line(styleIconInfo, "›", fmt.Sprintf(format, args...))
}

func (s status) detail(format string, args ...any) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints an output path under the previous line.
func (s status) file(path string) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func (s status) keyValue(key, value string) {
	fmt.Fprintln(s.w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func (s status) nextStep(description, cmd string) {
	fmt.Fprintln(s.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func (s status) newline() { fmt.Fprintln(s.w) }

// stats prints the counts of one run on one line. The cached marker only
// means something for image formats, which are the only cached artifacts.
func (s status) stats(st pipeline.Stats, images bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d answers", st.Answers)),
		StyleDim.Render(fmt.Sprintf("%d vertices", st.Vertices)),
		StyleDim.Render(fmt.Sprintf("%d nodes", st.Nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", st.Edges)),
	}
	if st.Placeholders > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d unbound", st.Placeholders)))
	}
	if st.Highlighted > 0 {
		parts = append(parts, StyleHighlight.Render(fmt.Sprintf("%d highlighted", st.Highlighted)))
	}
	if images {
		if len(st.ArtifactHits) > 0 {
			parts = append(parts, styleCached.Render("cached"))
		} else {
			parts = append(parts, StyleDim.Render("fresh"))
		}
	}
	fmt.Fprintln(s.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
